// Package main exercises the API with concurrent writers: it creates an
// event, signs in a handful of identities over HTTP, and has each identity
// hammer slot toggles through its own autosave coordinator, ending with a
// summary fetch to confirm the aggregated counts. Point it at a running
// server with MEETSYNC_URL.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/cookiejar"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mfreitag/meetsync/internal/autosave"
	"github.com/mfreitag/meetsync/internal/domain"
	"github.com/mfreitag/meetsync/internal/timegrid"
)

const (
	writers   = 8
	toggleOps = 200
)

func main() {
	base := os.Getenv("MEETSYNC_URL")
	if base == "" {
		base = "http://127.0.0.1:8080"
	}

	eventID := "loadtest-" + uuid.NewString()[:8]
	date := time.Now().Format("2006-01-02")
	slots, err := timegrid.WindowLabels("9:00 AM", "5:00 PM")
	if err != nil {
		log.Fatalf("derive slots: %v", err)
	}

	event := domain.Event{
		ID:            eventID,
		Name:          "Load Test",
		SelectedDates: []string{date},
		StartTime:     "9:00 AM",
		EndTime:       "5:00 PM",
		Timezone:      domain.Timezone{Value: "America/New_York", Label: "Eastern Time"},
		TimeSlots:     slots,
		Responses:     []domain.Response{},
	}

	if err := postJSON(base+"/events", http.DefaultClient, event, nil); err != nil {
		log.Fatalf("create event: %v", err)
	}
	fmt.Printf("event %s created with %d slots on %s\n\n", eventID, len(slots), date)

	start := time.Now()
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			if err := runWriter(base, eventID, date, slots, n); err != nil {
				fmt.Printf("  writer %02d  FAILED  (%v)\n", n, err)
				return
			}
			fmt.Printf("  writer %02d  done\n", n)
		}(i)
	}
	wg.Wait()
	fmt.Printf("\n%d writers, %d toggles each, in %s\n", writers, toggleOps, time.Since(start))

	var summary struct {
		Days []struct {
			Slots []struct {
				Time  string `json:"time"`
				Count int    `json:"count"`
				Total int    `json:"total"`
			} `json:"slots"`
		} `json:"days"`
	}
	if err := getJSON(base+"/events/summary?id="+eventID, &summary); err != nil {
		log.Fatalf("fetch summary: %v", err)
	}

	if len(summary.Days) != 1 {
		log.Fatalf("expected 1 day in summary, got %d", len(summary.Days))
	}
	total := 0
	if len(summary.Days[0].Slots) > 0 {
		total = summary.Days[0].Slots[0].Total
	}
	fmt.Printf("summary sees %d identities across %d slots\n", total, len(summary.Days[0].Slots))
	if total == writers {
		fmt.Println("PASS — every concurrent writer's snapshot is visible")
	} else {
		fmt.Printf("FAIL — expected %d identities, got %d\n", writers, total)
		os.Exit(1)
	}
}

// runWriter signs in one identity and pushes a burst of random-ish toggles
// through an autosave coordinator, flushing at the end like a gesture
// release would.
func runWriter(base, eventID, date string, slots []string, n int) error {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return err
	}
	client := &http.Client{Jar: jar, Timeout: 10 * time.Second}

	name := fmt.Sprintf("writer-%02d", n)
	signIn := map[string]any{"eventId": eventID, "userName": name}
	if err := postJSON(base+"/events/users", client, signIn, nil); err != nil {
		return fmt.Errorf("sign in: %w", err)
	}

	coord := autosave.New(func(ctx context.Context, entries []domain.AvailabilityEntry) error {
		body := map[string]any{"eventId": eventID, "availability": entries}
		return putJSON(base+"/events/responses", client, body)
	}, autosave.WithDelay(200*time.Millisecond))
	defer coord.Close()

	for i := 0; i < toggleOps; i++ {
		slot := slots[(n+i*7)%len(slots)]
		coord.Toggle(date, slot, (n+i)%3 != 0)
	}
	return coord.Flush(context.Background())
}

func postJSON(url string, client *http.Client, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return err
	}
	resp, err := client.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	return decode(resp, out)
}

func putJSON(url string, client *http.Client, in any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	return decode(resp, nil)
}

func getJSON(url string, out any) error {
	resp, err := http.Get(url)
	if err != nil {
		return err
	}
	return decode(resp, out)
}

func decode(resp *http.Response, out any) error {
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("status %d: %s", resp.StatusCode, raw)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
