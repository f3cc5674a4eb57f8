package monitoring

import (
	"context"
	"io"
	"net"
	"net/http"
	"strings"
	"testing"

	"github.com/cloudretro/glthumb/pkg/config"
	"github.com/cloudretro/glthumb/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
)

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := prometheus.NewCounter(prometheus.CounterOpts{Name: "test_frames_total", Help: "Frames."})
	reg.MustRegister(c)
	c.Add(3)

	m := New(config.Monitoring{Port: 0, URLPrefix: "/x", MetricEnabled: true, ProfilingEnabled: true}, reg, logger.Nop())
	if err := m.Run(); err != nil {
		t.Fatal(err)
	}
	defer func() { _ = m.Shutdown(context.Background()) }()
	_, port, err := net.SplitHostPort(m.Addr())
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		path string
		code int
		body string
	}{
		{path: "/x/metrics", code: http.StatusOK, body: "test_frames_total 3"},
		{path: "/x/debug/pprof/heap?debug=1", code: http.StatusOK, body: "heap profile"},
		{path: "/metrics", code: http.StatusNotFound},
	}
	for _, test := range tests {
		resp, err := http.Get("http://127.0.0.1:" + port + test.path)
		if err != nil {
			t.Fatal(err)
		}
		b, _ := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if resp.StatusCode != test.code {
			t.Errorf("%v: status %v", test.path, resp.StatusCode)
		}
		if !strings.Contains(string(b), test.body) {
			t.Errorf("%v: no %q in %q", test.path, test.body, b)
		}
	}
}

func TestIsEnabled(t *testing.T) {
	if (&config.Monitoring{}).IsEnabled() {
		t.Errorf("empty config is enabled")
	}
	if !(&config.Monitoring{MetricEnabled: true}).IsEnabled() {
		t.Errorf("metrics config is disabled")
	}
}
