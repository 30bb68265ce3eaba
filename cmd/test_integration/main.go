package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"
)

func main() {
	baseURL := os.Getenv("SIMCOMP_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	// Wait for server to start
	time.Sleep(2 * time.Second)

	fmt.Println("Starting Integration Test...")

	fmt.Println("1. Health...")
	if _, ok := sendRequest(baseURL, "GET", "/health", nil, http.StatusOK); !ok {
		fmt.Println("FAILED: Health")
		os.Exit(1)
	}
	fmt.Println("PASSED: Health")

	fmt.Println("2. Listing contributions...")
	body, ok := sendRequest(baseURL, "GET", "/contribution/", nil, http.StatusOK)
	if !ok {
		fmt.Println("FAILED: List contributions")
		os.Exit(1)
	}
	var listed struct {
		Payload struct {
			Contributions []string `json:"contributions"`
		} `json:"payload"`
	}
	if err := json.Unmarshal(body, &listed); err != nil || len(listed.Payload.Contributions) < 2 {
		fmt.Printf("FAILED: need at least two contributions, got %v (%v)\n", listed.Payload.Contributions, err)
		os.Exit(1)
	}
	fmt.Println("PASSED: List contributions")

	q := url.Values{}
	for _, id := range listed.Payload.Contributions[:2] {
		q.Add("contributions", id)
	}

	for i, typ := range []string{"PATH", "MERGE"} {
		fmt.Printf("%d. Comparing (%s)...\n", i+3, typ)
		q.Set("type", typ)
		if _, ok := sendRequest(baseURL, "GET", "/contribution/compare?"+q.Encode(), nil, http.StatusOK); !ok {
			fmt.Printf("FAILED: Compare %s\n", typ)
			os.Exit(1)
		}
		fmt.Printf("PASSED: Compare %s\n", typ)
	}

	fmt.Println("5. Storing the comparison...")
	q.Set("type", "PATH")
	body, ok = sendRequest(baseURL, "GET", "/contribution/compare?"+q.Encode(), nil, http.StatusOK)
	if !ok {
		fmt.Println("FAILED: Compare")
		os.Exit(1)
	}
	var compared struct {
		Payload struct {
			Comparison map[string]interface{} `json:"comparison"`
		} `json:"payload"`
	}
	_ = json.Unmarshal(body, &compared)
	key := fmt.Sprintf("smoke-%d", time.Now().Unix())
	thing := map[string]interface{}{
		"thing_type": "COMPARISON",
		"thing_key":  key,
		"data":       compared.Payload.Comparison,
	}
	if _, ok := sendRequest(baseURL, "POST", "/thing/", thing, http.StatusCreated); !ok {
		fmt.Println("FAILED: Add thing")
		os.Exit(1)
	}
	if _, ok := sendRequest(baseURL, "GET", "/thing/export?thing_type=COMPARISON&format=CSV&thing_key="+key, nil, http.StatusOK); !ok {
		fmt.Println("FAILED: Export thing")
		os.Exit(1)
	}
	fmt.Println("PASSED: Store and export")
}

func sendRequest(baseURL, method, endpoint string, payload interface{}, want int) ([]byte, bool) {
	var body io.Reader
	if payload != nil {
		jsonBytes, _ := json.Marshal(payload)
		body = bytes.NewBuffer(jsonBytes)
	}

	req, err := http.NewRequest(method, baseURL+endpoint, body)
	if err != nil {
		fmt.Printf("Error creating request: %v\n", err)
		return nil, false
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		fmt.Printf("Error sending request: %v\n", err)
		return nil, false
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != want {
		fmt.Printf("Request failed with status %d: %s\n", resp.StatusCode, string(respBody))
		return nil, false
	}

	fmt.Printf("Response: %s\n", string(respBody))
	return respBody, true
}
