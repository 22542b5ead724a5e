package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

// TestRegisterCounter tests the RegisterCounter method of the Collector.
func TestRegisterCounter(t *testing.T) {
	collector := New(Namespace)

	if err := collector.RegisterCounter("test_counter", "Counter for tests.", "label1"); err != nil {
		t.Fatal(err)
	}
	if err := collector.AddCounter("test_counter", 1, "value1"); err != nil {
		t.Fatal(err)
	}

	counterVec := collector.(*prometheusCollector).counters["pentest_hub_test_counter"]
	err := testutil.CollectAndCompare(counterVec, strings.NewReader(`
		# HELP pentest_hub_test_counter Counter for tests.
		# TYPE pentest_hub_test_counter counter
		pentest_hub_test_counter{label1="value1"} 1
	`))
	if err != nil {
		t.Fatal(err)
	}
}

func TestDuplicateRegisterCounter(t *testing.T) {
	collector := New(Namespace)

	if err := collector.RegisterCounter("duplicate_counter", "help", "label1"); err != nil {
		t.Fatal(err)
	}
	err := collector.RegisterCounter("duplicate_counter", "help", "label1")
	if err == nil || !strings.Contains(err.Error(), "already registered") {
		t.Fatalf("Expected error to indicate registration conflict, got: %v", err)
	}
}

// TestNonExistingCounter tests the AddCounter method of the Collector.
func TestNonExistingCounter(t *testing.T) {
	collector := New(Namespace)

	err := collector.AddCounter("non_existing_counter", 1, "label1")
	if err == nil {
		t.Fatal("expected error for non-existing counter")
	}
}

func TestAddCounter_WrongLabelCount(t *testing.T) {
	collector := New(Namespace)

	if err := collector.RegisterCounter("test_counter", "help", "label1", "label2"); err != nil {
		t.Fatal(err)
	}
	if err := collector.AddCounter("test_counter", 1, "only-one"); err == nil {
		t.Fatal("expected error for wrong label cardinality")
	}
}

// TestRegisterHistogram tests the RegisterHistogram method of the Collector.
func TestRegisterHistogram(t *testing.T) {
	collector := New(Namespace)

	if err := collector.RegisterHistogram("test_histogram", "help", nil, "label1"); err != nil {
		t.Fatal(err)
	}
	if err := collector.ObserveHistogram("test_histogram", 2.5, "label1"); err != nil {
		t.Fatal(err)
	}

	err := collector.RegisterHistogram("test_histogram", "help", nil, "label1")
	if err == nil || !strings.Contains(err.Error(), "already registered") {
		t.Fatalf("Expected error to indicate registration conflict, got: %v", err)
	}
}

func TestObserveHistogram_NotFound(t *testing.T) {
	collector := New(Namespace)

	err := collector.ObserveHistogram("non_existent_histogram", 3.0, "label1")
	if err == nil {
		t.Fatal("Expected error when adding to a non-existent histogram, got nil")
	}

	expectedError := "histogram 'pentest_hub_non_existent_histogram' not found"
	if err.Error() != expectedError {
		t.Fatalf("Expected error: %s, got: %s", expectedError, err.Error())
	}
}

// TestMeasureFunctionExecutionTime tests the MeasureFunctionExecutionTime method of the Collector.
func TestMeasureFunctionExecutionTime(t *testing.T) {
	collector := New(Namespace)

	if err := collector.RegisterHistogram("function_duration_seconds", "Time spent executing functions.",
		[]float64{0.25, 0.5, 1}, "function"); err != nil {
		t.Fatal(err)
	}

	stopFunc, err := collector.MeasureFunctionExecutionTime("function_duration_seconds", "test_function")
	if err != nil {
		t.Fatal(err)
	}
	time.Sleep(10 * time.Millisecond)
	stopFunc()

	histogramVec := collector.(*prometheusCollector).histograms["pentest_hub_function_duration_seconds"]
	if count := testutil.CollectAndCount(histogramVec); count != 1 {
		t.Fatalf("expected 1 histogram series, got %d", count)
	}

	if _, err := collector.MeasureFunctionExecutionTime("missing"); err == nil {
		t.Fatal("expected error for unregistered histogram")
	}
}

func TestUnregister(t *testing.T) {
	collector := New(Namespace)

	if err := collector.RegisterCounter("test_counter", "help", "label1"); err != nil {
		t.Fatal(err)
	}
	if err := collector.RegisterHistogram("test_histogram", "help", nil, "label1"); err != nil {
		t.Fatal(err)
	}
	if err := collector.UnregisterCounter("test_counter"); err != nil {
		t.Fatal(err)
	}
	if err := collector.UnregisterHistogram("test_histogram"); err != nil {
		t.Fatal(err)
	}
	if err := collector.AddCounter("test_counter", 1, "label1"); err == nil {
		t.Fatal("expected error after unregistering counter")
	}

	// unknown names are ignored
	if err := collector.UnregisterCounter("non_existent_counter"); err != nil {
		t.Fatal("expected no error when unregistering non-existent counter")
	}
	if err := collector.UnregisterHistogram("non_existent_histogram"); err != nil {
		t.Fatal("expected no error when unregistering non-existent histogram")
	}

	// a name can be registered again once removed
	if err := collector.RegisterCounter("test_counter", "help", "label1"); err != nil {
		t.Fatal(err)
	}
}

// TestMetricsHandler tests the MetricsHandler method of the Collector.
func TestMetricsHandler(t *testing.T) {
	collector := New(Namespace)
	recorder, err := NewRecorder(collector)
	if err != nil {
		t.Fatal(err)
	}
	recorder.ImportCompleted("burp", 2, 1)

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, "/metrics", nil)
	if err != nil {
		t.Fatalf("could not create request: %v", err)
	}

	rr := httptest.NewRecorder()
	collector.MetricsHandler().ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusOK {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusOK)
	}
	if !strings.Contains(rr.Body.String(), `pentest_hub_imported_findings_total{tool="burp"} 2`) {
		t.Errorf("metrics output missing imported findings counter:\n%s", rr.Body.String())
	}
}

func TestRecorder(t *testing.T) {
	collector := New(Namespace)
	recorder, err := NewRecorder(collector)
	if err != nil {
		t.Fatal(err)
	}

	recorder.ImportCompleted("nessus", 3, 4)
	recorder.ImportCompleted("nessus", 1, 0)
	recorder.ReportRendered("md", "rendered", 20*time.Millisecond)
	recorder.ReportRendered("docx", "passthrough", time.Millisecond)

	pc := collector.(*prometheusCollector)
	tests := []struct {
		metric string
		labels []string
		want   float64
	}{
		{ImportsTotal, []string{"nessus"}, 2},
		{ImportedFindingsTotal, []string{"nessus"}, 4},
		{SkippedFindingsTotal, []string{"nessus"}, 4},
		{ReportsTotal, []string{"md", "rendered"}, 1},
		{ReportsTotal, []string{"docx", "passthrough"}, 1},
	}
	for _, tt := range tests {
		got := testutil.ToFloat64(pc.counters[pc.fullName(tt.metric)].WithLabelValues(tt.labels...))
		if got != tt.want {
			t.Errorf("%s%v = %v, want %v", tt.metric, tt.labels, got, tt.want)
		}
	}

	if count := testutil.CollectAndCount(pc.histograms[pc.fullName(RenderDuration)]); count != 2 {
		t.Errorf("expected 2 render duration series, got %d", count)
	}

	if _, err := NewRecorder(collector); err == nil {
		t.Fatal("expected error registering the recorder twice")
	}
}
