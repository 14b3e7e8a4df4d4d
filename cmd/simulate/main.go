package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"
)

// The simulator hammers POST /bookings with concurrent requests for a
// small pool of slots to show the duplicate guard and the slot lock
// holding up under contention.

type SimConfig struct {
	APIBaseURL string
	Duration   time.Duration
	Workers    int
	Date       string
	Patients   int
}

type catalogOption struct {
	Name  string   `json:"name"`
	Slots []string `json:"slots"`
}

type bookingRequest struct {
	AppointmentDate string `json:"appointmentDate"`
	Email           string `json:"email"`
	Treatment       string `json:"treatment"`
	Slot            string `json:"slot"`
	PatientName     string `json:"patientName"`
}

type bookingAck struct {
	Acknowledged bool   `json:"acknowledged"`
	Message      string `json:"message"`
}

type OperationMetrics struct {
	Total     int64
	Success   int64
	Duplicate int64
	Conflict  int64
	Error     int64

	mu        sync.Mutex
	Latencies []time.Duration
}

func (om *OperationMetrics) Record(latency time.Duration, outcome string) {
	atomic.AddInt64(&om.Total, 1)
	switch outcome {
	case "success":
		atomic.AddInt64(&om.Success, 1)
	case "duplicate":
		atomic.AddInt64(&om.Duplicate, 1)
	case "conflict":
		atomic.AddInt64(&om.Conflict, 1)
	default:
		atomic.AddInt64(&om.Error, 1)
	}

	om.mu.Lock()
	om.Latencies = append(om.Latencies, latency)
	om.mu.Unlock()
}

func (om *OperationMetrics) Stats() (avg, min, max, p95 time.Duration) {
	om.mu.Lock()
	defer om.mu.Unlock()

	if len(om.Latencies) == 0 {
		return 0, 0, 0, 0
	}

	latencies := make([]time.Duration, len(om.Latencies))
	copy(latencies, om.Latencies)

	sort.Slice(latencies, func(i, j int) bool {
		return latencies[i] < latencies[j]
	})

	var sum time.Duration
	for _, l := range latencies {
		sum += l
	}

	avg = sum / time.Duration(len(latencies))
	min = latencies[0]
	max = latencies[len(latencies)-1]

	p95Idx := len(latencies) * 95 / 100
	if p95Idx >= len(latencies) {
		p95Idx = len(latencies) - 1
	}
	p95 = latencies[p95Idx]

	return avg, min, max, p95
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("simulator starting")

	cfg := loadConfig()
	log.Printf("config: base_url=%s duration=%s workers=%d date=%s patients=%d",
		cfg.APIBaseURL, cfg.Duration, cfg.Workers, cfg.Date, cfg.Patients)

	client := &http.Client{Timeout: 10 * time.Second}

	catalog, err := fetchCatalog(client, cfg)
	if err != nil {
		log.Fatalf("fetch catalog: %v", err)
	}
	if len(catalog) == 0 {
		log.Fatal("catalog is empty, run the seed first")
	}
	log.Printf("loaded %d appointment options", len(catalog))

	var metrics OperationMetrics
	deadline := time.Now().Add(cfg.Duration)

	var wg sync.WaitGroup
	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)))
			for time.Now().Before(deadline) {
				option := catalog[rng.Intn(len(catalog))]
				if len(option.Slots) == 0 {
					continue
				}
				req := bookingRequest{
					AppointmentDate: cfg.Date,
					Email:           fmt.Sprintf("patient%d@sim.test", rng.Intn(cfg.Patients)),
					Treatment:       option.Name,
					Slot:            option.Slots[rng.Intn(len(option.Slots))],
					PatientName:     "Simulated Patient",
				}
				postBooking(client, cfg, req, &metrics)
			}
		}(w)
	}
	wg.Wait()

	printReport(&metrics)
}

func fetchCatalog(client *http.Client, cfg SimConfig) ([]catalogOption, error) {
	resp, err := client.Get(cfg.APIBaseURL + "/appointmentOptions?date=" + cfg.Date)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var catalog []catalogOption
	if err := json.NewDecoder(resp.Body).Decode(&catalog); err != nil {
		return nil, err
	}
	return catalog, nil
}

func postBooking(client *http.Client, cfg SimConfig, req bookingRequest, metrics *OperationMetrics) {
	body, err := json.Marshal(req)
	if err != nil {
		metrics.Record(0, "error")
		return
	}

	start := time.Now()
	resp, err := client.Post(cfg.APIBaseURL+"/bookings", "application/json", bytes.NewReader(body))
	latency := time.Since(start)
	if err != nil {
		metrics.Record(latency, "error")
		return
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var ack bookingAck
		if err := json.NewDecoder(resp.Body).Decode(&ack); err != nil {
			metrics.Record(latency, "error")
			return
		}
		if ack.Acknowledged {
			metrics.Record(latency, "success")
		} else {
			metrics.Record(latency, "duplicate")
		}
	case http.StatusConflict:
		metrics.Record(latency, "conflict")
	default:
		metrics.Record(latency, "error")
	}
}

func printReport(metrics *OperationMetrics) {
	avg, min, max, p95 := metrics.Stats()

	fmt.Println()
	fmt.Println("=== booking simulation report ===")
	fmt.Printf("total:      %d\n", metrics.Total)
	fmt.Printf("booked:     %d\n", metrics.Success)
	fmt.Printf("duplicates: %d\n", metrics.Duplicate)
	fmt.Printf("conflicts:  %d\n", metrics.Conflict)
	fmt.Printf("errors:     %d\n", metrics.Error)
	fmt.Printf("latency:    avg=%s min=%s max=%s p95=%s\n", avg, min, max, p95)
}

func loadConfig() SimConfig {
	return SimConfig{
		APIBaseURL: getEnv("SIM_API_BASE_URL", "http://localhost:5000"),
		Duration:   getDuration("SIM_DURATION", 30*time.Second),
		Workers:    getInt("SIM_WORKERS", 10),
		Date:       getEnv("SIM_DATE", time.Now().Format("2006-01-02")),
		Patients:   getInt("SIM_PATIENTS", 200),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
