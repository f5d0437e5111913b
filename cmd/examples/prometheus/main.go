// Example demonstrating how to use go-serial with Prometheus metrics
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	serial "github.com/MichaelAJay/go-serial"
	"github.com/MichaelAJay/go-serial/value"
)

func main() {
	// Create Prometheus metrics on a private registry
	metrics, err := serial.NewPrometheusMetrics("example", nil)
	if err != nil {
		fmt.Printf("Error creating metrics: %v\n", err)
		os.Exit(1)
	}

	// Every serializer the manager builds reports to the same collectors
	manager := serial.NewManager(serial.WithMetrics(metrics))

	// Start Prometheus server
	server, err := serial.StartPrometheusServer(metrics, ":9090")
	if err != nil {
		fmt.Printf("Error starting Prometheus server: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Prometheus metrics server running at http://localhost:9090/metrics")

	backends := serial.DefaultRegistry.AvailableNames()
	go func() {
		for i := 0; i < 10000; i++ {
			s, err := manager.Get(backends[i%len(backends)])
			if err != nil {
				fmt.Printf("Error getting serializer: %v\n", err)
				return
			}

			v := value.MapValue(
				value.E("seq", value.IntValue(int64(i))),
				value.E("payload", value.StringValue(fmt.Sprintf("value-%d", i))),
			)
			data, err := s.Serialize(v)
			if err != nil {
				fmt.Printf("Error serializing: %v\n", err)
				continue
			}

			// Every 10th decode gets a truncated payload to record failures
			if i%10 == 0 {
				data = data[:len(data)/2]
			}
			_, _ = s.Unserialize(data)

			// Sleep to simulate real workload
			time.Sleep(10 * time.Millisecond)
		}
	}()

	// Wait for signal to terminate
	termChan := make(chan os.Signal, 1)
	signal.Notify(termChan, syscall.SIGINT, syscall.SIGTERM)
	<-termChan

	fmt.Println("Shutting down...")

	// Graceful server shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		fmt.Printf("Prometheus server shutdown error: %v\n", err)
	}
}
