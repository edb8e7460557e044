package objectStore

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the prometheus collectors of the object store client.
type Metrics struct {
	RequestsTotal   *prometheus.CounterVec   // file_storage_object_requests_total{operation,status}
	RequestDuration *prometheus.HistogramVec // file_storage_object_request_duration_seconds{operation}
	BytesUploaded   prometheus.Counter       // file_storage_object_bytes_uploaded_total
	BytesDownloaded prometheus.Counter       // file_storage_object_bytes_downloaded_total
}

// NewMetrics registers the collectors with registry, or with the default
// registerer when registry is nil.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registry)
	return &Metrics{
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "file_storage_object_requests_total",
			Help: "Object store requests by operation and status",
		}, []string{"operation", "status"}),

		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "file_storage_object_request_duration_seconds",
			Help:    "Object store request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),

		BytesUploaded: factory.NewCounter(prometheus.CounterOpts{
			Name: "file_storage_object_bytes_uploaded_total",
			Help: "Total bytes written to the object store",
		}),

		BytesDownloaded: factory.NewCounter(prometheus.CounterOpts{
			Name: "file_storage_object_bytes_downloaded_total",
			Help: "Total bytes read from the object store",
		}),
	}
}

// Instrumented decorates an ObjectStore with request metrics.
type Instrumented struct {
	next    ObjectStore
	metrics *Metrics
}

func NewInstrumented(next ObjectStore, metrics *Metrics) *Instrumented {
	return &Instrumented{next: next, metrics: metrics}
}

func (s *Instrumented) observe(op string, start time.Time, err error) {
	status := "ok"
	switch {
	case errors.Is(err, ErrObjectNotFound):
		status = "not_found"
	case err != nil:
		status = "error"
	}
	s.metrics.RequestsTotal.WithLabelValues(op, status).Inc()
	s.metrics.RequestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

func (s *Instrumented) Put(ctx context.Context, key string, r io.Reader, contentType string, size int64) error {
	start := time.Now()
	counted := &countingReader{r: r}
	err := s.next.Put(ctx, key, counted, contentType, size)
	s.observe("put", start, err)
	if err == nil {
		s.metrics.BytesUploaded.Add(float64(counted.n))
	}
	return err
}

func (s *Instrumented) Get(ctx context.Context, key string) (*Object, error) {
	start := time.Now()
	obj, err := s.next.Get(ctx, key)
	s.observe("get", start, err)
	if err != nil {
		return nil, err
	}
	obj.Body = &countingReadCloser{ReadCloser: obj.Body, counter: s.metrics.BytesDownloaded}
	return obj, nil
}

func (s *Instrumented) Copy(ctx context.Context, srcKey, dstKey string) error {
	start := time.Now()
	err := s.next.Copy(ctx, srcKey, dstKey)
	s.observe("copy", start, err)
	return err
}

func (s *Instrumented) Delete(ctx context.Context, key string) error {
	start := time.Now()
	err := s.next.Delete(ctx, key)
	s.observe("delete", start, err)
	return err
}

func (s *Instrumented) Ping(ctx context.Context) error {
	if p, ok := s.next.(Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

type countingReadCloser struct {
	io.ReadCloser
	counter prometheus.Counter
}

func (c *countingReadCloser) Read(p []byte) (int, error) {
	n, err := c.ReadCloser.Read(p)
	if n > 0 {
		c.counter.Add(float64(n))
	}
	return n, err
}
