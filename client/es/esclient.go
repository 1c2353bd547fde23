package es

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/elastic/go-elasticsearch/v7"
	"github.com/elastic/go-elasticsearch/v7/esapi"
	"github.com/elastic/go-elasticsearch/v7/estransport"
	"github.com/fundwit/go-commons/types"
	"github.com/sirupsen/logrus"
)

type H map[string]interface{}

// DocumentStore is the slice of elasticsearch the indexer, the synchronizer and search depend on.
type DocumentStore interface {
	Index(ctx context.Context, index string, id types.ID, doc interface{}) error
	DropIndex(ctx context.Context, index string) error
	Search(ctx context.Context, index string, query interface{}) (*SearchResult, error)
}

type SearchResult struct {
	Took    int          `json:"took"`
	TimeOut bool         `json:"timed_out"`
	Shards  SearchShards `json:"_shards"`
	Hits    SearchHits   `json:"hits"`
}
type SearchShards struct {
	Total      int `json:"total"`
	Successful int `json:"successful"`
	Skipped    int `json:"skipped"`
	Failed     int `json:"failed"`
}
type SearchHits struct {
	Total    SearchHitsTotal `json:"total"`
	MaxScore float64         `json:"max_score"`
	Hits     []SearchHit     `json:"hits"`
}
type SearchHitsTotal struct {
	Value    int    `json:"value"`
	Relation string `json:"relation"`
}
type SearchHit struct {
	Index  string        `json:"_index"`
	Id     string        `json:"_id"`
	Score  float64       `json:"_score"`
	Source Source        `json:"_source"`
	Sort   []interface{} `json:"sort"`
}

// Source keeps a raw document body.
type Source string

func (d *Source) UnmarshalJSON(data []byte) (err error) {
	*d = Source(data)
	return
}

func (d Source) MarshalJSON() ([]byte, error) {
	return []byte(d), nil
}

type Client struct {
	es *elasticsearch.Client
}

// NewClient connects to the given addresses; with none it falls back to ELASTICSEARCH_URL.
func NewClient(addresses []string, debug bool) (*Client, error) {
	conf := elasticsearch.Config{
		Addresses: addresses,
		Logger:    &estransport.TextLogger{Output: os.Stdout, EnableRequestBody: debug, EnableResponseBody: debug},
		Transport: &TracingTransport{Transport: http.DefaultTransport},
	}
	client, err := elasticsearch.NewClient(conf)
	if err != nil {
		return nil, err
	}
	return &Client{es: client}, nil
}

func CreateClientFromEnv() (*Client, error) {
	var addresses []string
	if v := os.Getenv("ELASTICSEARCH_URL"); v != "" {
		addresses = strings.Split(v, ",")
	}
	return NewClient(addresses, os.Getenv("GIN_MODE") == "debug")
}

// DropIndex deletes index with all its documents. A missing index is not an error.
func (c *Client) DropIndex(ctx context.Context, index string) error {
	req := esapi.IndicesDeleteRequest{Index: []string{index}}
	res, err := req.Do(ctx, c.es)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("error response status %s", res.Status())
	}
	logrus.Debugln(res.String())
	return nil
}

func (c *Client) Index(ctx context.Context, index string, id types.ID, doc interface{}) error {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(doc); err != nil {
		return err
	}

	req := esapi.IndexRequest{
		Index:      index,
		DocumentID: id.String(),
		Body:       bytes.NewReader(buf.Bytes()),
		Refresh:    "true",
	}

	logrus.Debugln("saved document body:", buf.String())
	res, err := req.Do(ctx, c.es)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("error response status %s", res.Status())
	}
	logrus.Debugln(res.String())
	return nil
}

func (c *Client) Search(ctx context.Context, index string, query interface{}) (*SearchResult, error) {
	var q bytes.Buffer
	if err := json.NewEncoder(&q).Encode(query); err != nil {
		return nil, err
	}

	res, err := c.es.Search(
		c.es.Search.WithContext(ctx),
		c.es.Search.WithIndex(index),
		c.es.Search.WithBody(&q),
		c.es.Search.WithTrackTotalHits(true),
	)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("search error: %s", res.String())
	}

	r := SearchResult{}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("decode search result: %w", err)
	}
	return &r, nil
}
