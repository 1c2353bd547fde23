package files_test

import (
	"bytes"
	"context"
	"creativehub/bizerror"
	"creativehub/files"
	"creativehub/session"
	"creativehub/testinfra"
	"io"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/gomega"
)

type fakeManager struct {
	uploaded []byte
	upload   *files.Upload
	records  map[string]files.FileRecord
	content  map[string]string
}

func (f *fakeManager) LoadByUUIDs(ctx context.Context, uuids []string) (map[string]files.FileRecord, error) {
	return f.records, nil
}

func (f *fakeManager) Create(ctx context.Context, u *files.Upload, s *session.Session) (*files.FileRecord, error) {
	data, err := ioutil.ReadAll(u.Content)
	if err != nil {
		return nil, err
	}
	f.uploaded = data
	f.upload = u
	return &files.FileRecord{ID: 1, UUID: "f-1", Name: u.Name, ContentType: u.ContentType, Size: u.Size, OwnerID: s.Identity.ID}, nil
}

func (f *fakeManager) Open(ctx context.Context, uuid string, s *session.Session) (*files.FileRecord, io.ReadCloser, error) {
	r, found := f.records[uuid]
	if !found {
		return nil, nil, bizerror.ErrNotFound
	}
	return &r, ioutil.NopCloser(bytes.NewBufferString(f.content[uuid])), nil
}

func TestFilesRestAPI(t *testing.T) {
	RegisterTestingT(t)

	m := &fakeManager{
		records: map[string]files.FileRecord{"f-2": {UUID: "f-2", Name: "logo.png", ContentType: "image/png", Size: 11}},
		content: map[string]string{"f-2": "binary-data"},
	}
	router := gin.New()
	router.Use(bizerror.ErrorHandling())
	files.RegisterFilesRestAPI(router, m, testinfra.InjectSession(testinfra.BuildSession(10, "owner-uuid")))

	t.Run("should upload multipart file", func(t *testing.T) {
		data := "------WebKitFormBoundaryWdDAe6hxfa4nl2Ig\r\n" +
			"Content-Disposition: form-data; name=\"file\"; filename=\"out.png\"\r\n" +
			"Content-Type: image/png\r\n" +
			"\r\n" +
			"binary-data\r\n" +
			"------WebKitFormBoundaryWdDAe6hxfa4nl2Ig--\r\n"

		req := httptest.NewRequest(http.MethodPost, files.PathFiles, bytes.NewBufferString(data))
		req.Header.Set("CONTENT-TYPE", "multipart/form-data; boundary=----WebKitFormBoundaryWdDAe6hxfa4nl2Ig")
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusCreated))
		Expect(string(m.uploaded)).To(Equal("binary-data"))
		Expect(m.upload.Name).To(Equal("out.png"))
		Expect(m.upload.ContentType).To(Equal("image/png"))
		Expect(body).To(ContainSubstring(`"uuid":"f-1"`))
		Expect(body).To(ContainSubstring(`"size":11`))
		Expect(body).To(ContainSubstring(`"ownerId":"10"`))
	})

	t.Run("should reject upload without file", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, files.PathFiles, nil)
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusBadRequest))
		Expect(body).To(MatchJSON(`{"code":"common.bad_param","message":"file is required","data":{"field":"file"}}`))
	})

	t.Run("should download file", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, files.PathFiles+"/f-2", nil)
		status, body, resp := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusOK))
		Expect(body).To(Equal("binary-data"))
		Expect(resp.Header.Get("Content-Type")).To(Equal("image/png"))
		Expect(resp.Header.Get("Content-Disposition")).To(Equal(`attachment; filename="logo.png"`))
	})

	t.Run("should return 404 for unknown file", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, files.PathFiles+"/f-3", nil)
		status, _, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusNotFound))
	})
}
