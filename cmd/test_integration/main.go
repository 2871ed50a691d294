// Manual smoke test against a running server. Exercises event CRUD, a
// chat turn, and route planning over HTTP.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

const baseURL = "http://localhost:8080"

func main() {
	// Wait for server to start
	time.Sleep(2 * time.Second)

	fmt.Println("Starting smoke test...")

	// 1. Create two located events directly.
	fmt.Println("1. Creating events...")
	today := time.Now().Format("2006-01-02")
	events := []map[string]interface{}{
		{
			"title":    "上午会议",
			"start":    today + "T09:00:00+08:00",
			"end":      today + "T10:00:00+08:00",
			"location": "中关村",
		},
		{
			"title":    "客户拜访",
			"start":    today + "T14:00:00+08:00",
			"end":      today + "T15:00:00+08:00",
			"location": "国贸",
		},
	}
	for _, ev := range events {
		if !sendRequest("POST", "/events", ev) {
			fmt.Println("FAILED: Create event")
			os.Exit(1)
		}
	}
	fmt.Println("PASSED: Create events")

	// 2. Ask the assistant what's on today.
	fmt.Println("2. Chatting...")
	if !sendRequest("POST", "/chat", map[string]string{"message": "今天有什么安排？"}) {
		fmt.Println("FAILED: Chat")
		os.Exit(1)
	}
	fmt.Println("PASSED: Chat")

	// 3. Plan routes between the events.
	fmt.Println("3. Planning routes...")
	if !sendRequest("POST", "/routes/plan", nil) {
		fmt.Println("FAILED: Plan routes")
		os.Exit(1)
	}
	fmt.Println("PASSED: Plan routes")
}

func sendRequest(method, endpoint string, payload interface{}) bool {
	var body io.Reader
	if payload != nil {
		jsonBytes, _ := json.Marshal(payload)
		body = bytes.NewBuffer(jsonBytes)
	}

	req, err := http.NewRequest(method, baseURL+endpoint, body)
	if err != nil {
		fmt.Printf("Error creating request: %v\n", err)
		return false
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		fmt.Printf("Error sending request: %v\n", err)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		fmt.Printf("Request failed with status %d: %s\n", resp.StatusCode, string(respBody))
		return false
	}

	respBody, _ := io.ReadAll(resp.Body)
	fmt.Printf("Response: %s\n", string(respBody))

	return true
}
