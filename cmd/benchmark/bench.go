package main

import (
	"flag"
	"fmt"
	"net/http"
	"time"

	vegeta "github.com/tsenart/vegeta/v12/lib"

	"github.com/calder-labs/provider-hub/internal/cli"
)

// Load-tests the read path of a running provider hub: the catalog listing
// and sync status endpoints that dashboards poll.
func main() {
	target := flag.String("target", "http://localhost:8000", "Base URL of the running server")
	duration := flag.Duration("duration", 10*time.Second, "Duration of the test")
	rate := flag.Int("rate", 50, "Requests per second")
	flag.Parse()

	endpoints := []string{
		*target + "/api/providers/models",
		*target + "/api/providers/models/sync/status",
		*target + "/api/providers/services/registry",
	}

	i := 0
	targeter := func(t *vegeta.Target) error {
		t.Method = "GET"
		t.URL = endpoints[i%len(endpoints)]
		t.Header = http.Header{
			"Accept": []string{"application/json"},
		}
		i++
		return nil
	}

	fmt.Printf("Benchmarking %s: %s duration, %d req/s\n", *target, *duration, *rate)

	attacker := vegeta.NewAttacker(vegeta.KeepAlive(true))
	var metrics vegeta.Metrics

	for res := range attacker.Attack(targeter, vegeta.Rate{Freq: *rate, Per: time.Second}, *duration, "provider-hub") {
		metrics.Add(res)
	}
	metrics.Close()

	fmt.Println("--------------------------------------------------")
	fmt.Println("99th percentile: ", metrics.Latencies.P99)
	fmt.Println("Mean:            ", metrics.Latencies.Mean)
	fmt.Println("Max:             ", metrics.Latencies.Max)
	success := fmt.Sprintf("%.2f%%", metrics.Success*100)
	if metrics.Success >= 0.99 {
		success = cli.Style(success, cli.Green)
	} else {
		success = cli.Style(success, cli.Red)
	}
	fmt.Println("Success:         ", success)
	fmt.Printf("Throughput:      %.2f req/s\n", metrics.Throughput)
	fmt.Println("--------------------------------------------------")

	if len(metrics.Errors) > 0 {
		fmt.Printf("%s Errors:\n", cli.CrossMark())
		for i, msg := range metrics.Errors {
			if i >= 5 {
				break
			}
			fmt.Println(" ", msg)
		}
	}
}
