package es

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	. "github.com/onsi/gomega"
	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
	"github.com/opentracing/opentracing-go/mocktracer"
)

type failingTransport struct{}

func (t *failingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return nil, errors.New("mock error")
}

func tracedRequest(tracer *mocktracer.MockTracer, target string) (*http.Request, opentracing.Span) {
	req, err := http.NewRequest(http.MethodGet, target, nil)
	Expect(err).To(BeNil())
	parent := tracer.StartSpan("caller")
	return req.WithContext(opentracing.ContextWithSpan(context.Background(), parent)), parent
}

func TestTracingTransport(t *testing.T) {
	RegisterTestingT(t)

	tracer := mocktracer.New()
	var receivedHeaders http.Header
	okServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedHeaders = r.Header.Clone()
		w.WriteHeader(http.StatusOK)
	}))
	defer okServer.Close()
	badServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer badServer.Close()

	t.Run("should pass through requests without span", func(t *testing.T) {
		tracer.Reset()
		client := &http.Client{Transport: &TracingTransport{Transport: http.DefaultTransport}}

		res, err := client.Get(okServer.URL + "/projects/_doc/1")
		Expect(err).To(BeNil())
		Expect(res.StatusCode).To(Equal(http.StatusOK))
		Expect(tracer.FinishedSpans()).To(BeEmpty())
	})

	t.Run("should open child span and propagate it", func(t *testing.T) {
		tracer.Reset()
		client := &http.Client{Transport: &TracingTransport{Transport: http.DefaultTransport}}
		req, parent := tracedRequest(tracer, okServer.URL+"/projects/_doc/1")

		res, err := client.Do(req)
		Expect(err).To(BeNil())
		Expect(res.StatusCode).To(Equal(http.StatusOK))
		parent.Finish()

		spans := tracer.FinishedSpans()
		Expect(len(spans)).To(Equal(2))
		child, caller := spans[0], spans[1]
		Expect(caller.OperationName).To(Equal("caller"))
		Expect(child.OperationName).To(Equal("GET /projects/_doc/1"))
		Expect(child.ParentID).To(Equal(caller.SpanContext.SpanID))
		Expect(child.SpanContext.TraceID).To(Equal(caller.SpanContext.TraceID))
		Expect(child.Tags()).To(Equal(map[string]interface{}{
			"span.kind":        ext.SpanKindEnum("client"),
			"http.url":         okServer.URL + "/projects/_doc/1",
			"http.method":      "GET",
			"http.status_code": uint16(200),
			"error":            false,
		}))
		Expect(receivedHeaders.Get("Mockpfx-Ids-Spanid")).ToNot(BeEmpty())
	})

	t.Run("should flag error responses", func(t *testing.T) {
		tracer.Reset()
		client := &http.Client{Transport: &TracingTransport{Transport: http.DefaultTransport}}
		req, parent := tracedRequest(tracer, badServer.URL)

		res, err := client.Do(req)
		Expect(err).To(BeNil())
		Expect(res.StatusCode).To(Equal(http.StatusBadRequest))
		parent.Finish()

		spans := tracer.FinishedSpans()
		Expect(len(spans)).To(Equal(2))
		Expect(spans[0].Tag("http.status_code")).To(Equal(uint16(400)))
		Expect(spans[0].Tag("error")).To(Equal(true))
	})

	t.Run("should record transport failures", func(t *testing.T) {
		tracer.Reset()
		client := &http.Client{Transport: &TracingTransport{Transport: &failingTransport{}}}
		req, parent := tracedRequest(tracer, "http://127.0.0.1:12345")

		res, err := client.Do(req)
		Expect(res).To(BeNil())
		var urlErr *url.Error
		Expect(errors.As(err, &urlErr)).To(BeTrue())
		Expect(urlErr.Err.Error()).To(Equal("mock error"))
		parent.Finish()

		spans := tracer.FinishedSpans()
		Expect(len(spans)).To(Equal(2))
		Expect(spans[0].Tags()).To(Equal(map[string]interface{}{
			"span.kind":    ext.SpanKindEnum("client"),
			"http.url":     "http://127.0.0.1:12345",
			"http.method":  "GET",
			"error":        true,
			"error.detail": "mock error",
		}))
	})
}
