package search

import (
	"context"
	"creativehub/bizerror"
	"creativehub/client/es"
	"creativehub/indices"
	"creativehub/session"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
)

var PathSearchProjects = "/api/search/projects"

type ProjectQuery struct {
	Title           string   `form:"title"`
	OrganizationID  types.ID `form:"organizationId"`
	StateCategories []string `form:"stateCategory"`
	PublishedOnly   bool     `form:"published"`
}

// SearchProjects looks projects up in the index. Non admins only see projects of their organizations.
func SearchProjects(ctx context.Context, docs es.DocumentStore, q ProjectQuery, s *session.Session) ([]indices.ProjectDocument, error) {
	filters := make([]es.H, 0, 5)
	if !s.Perms.IsSystemAdmin() {
		visible := s.Perms.Organizations()
		if len(visible) == 0 {
			return []indices.ProjectDocument{}, nil
		}
		filters = append(filters, es.H{"terms": es.H{"organizationId": visible}})
	}
	if q.OrganizationID != 0 {
		filters = append(filters, es.H{"term": es.H{"organizationId": q.OrganizationID}})
	}
	if q.Title != "" {
		filters = append(filters, es.H{"match": es.H{"title": es.H{"query": q.Title, "operator": "AND"}}})
	}
	if len(q.StateCategories) > 0 {
		filters = append(filters, es.H{"terms": es.H{"stateCategory": q.StateCategories}})
	}
	if q.PublishedOnly {
		filters = append(filters, es.H{"term": es.H{"published": true}})
	}

	query := es.H{
		"size":  1000,
		"query": es.H{"bool": es.H{"filter": filters}},
		"sort":  []es.H{{"createTime": es.H{"order": "desc"}}},
	}
	r, err := docs.Search(ctx, indices.ProjectIndexName, query)
	if err != nil {
		return nil, err
	}

	documents := make([]indices.ProjectDocument, 0, len(r.Hits.Hits))
	for _, hit := range r.Hits.Hits {
		doc := indices.ProjectDocument{}
		if err := json.Unmarshal([]byte(hit.Source), &doc); err != nil {
			return nil, fmt.Errorf("decode project document %s: %w", hit.Id, err)
		}
		documents = append(documents, doc)
	}
	return documents, nil
}

func RegisterSearchRestAPI(r *gin.Engine, docs es.DocumentStore, middleWares ...gin.HandlerFunc) {
	r.Group(PathSearchProjects, middleWares...).GET("", func(c *gin.Context) {
		q := ProjectQuery{}
		if err := c.ShouldBindQuery(&q); err != nil {
			panic(&bizerror.ErrBadParam{Cause: err})
		}
		documents, err := SearchProjects(c.Request.Context(), docs, q, session.ExtractSessionFromGinContext(c))
		if err != nil {
			panic(err)
		}
		c.JSON(http.StatusOK, documents)
	})
}
