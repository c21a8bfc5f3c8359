package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/fatih/color"
)

const baseURL = "http://localhost:3000/api"

// Pretty print JSON helper
func prettyPrint(v interface{}) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("%v\n", v)
		return
	}
	fmt.Println(string(b))
}

// Request helper
func sendRequest(method, url string, body interface{}) (*http.Response, []byte, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		bodyReader = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, baseURL+url, bodyReader)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{} // Pipeline replies are pushed over ws; HTTP calls stay fast
	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	return resp, respBody, err
}

func main() {
	color.Cyan("🚀 Starting Chat API smoke test\n")

	// 1. Create session
	color.Yellow("\n1. Create session")
	resp, body, err := sendRequest("POST", "/chat/v1/session", nil)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)

	var createResp struct {
		Data struct {
			Id string `json:"id"`
		} `json:"data"`
	}
	json.Unmarshal(body, &createResp)
	sessionId := createResp.Data.Id
	color.Green("Session: %s", sessionId)

	// 2. Trigger clarification flow
	color.Yellow("\n2. Send destination query")
	resp, body, err = sendRequest("POST", "/chat/v1/session/"+sessionId+"/message",
		map[string]string{"message": "I want to visit a quiet coastal city in Europe"})
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	var msgResp map[string]interface{}
	json.Unmarshal(body, &msgResp)
	prettyPrint(msgResp)

	// 3. Answer questions until completion
	answers := []string{"late spring", "museums and food", "mid-range", "walking", "4 days"}
	for i, answer := range answers {
		color.Yellow("\n3.%d Answer: %q", i+1, answer)
		resp, body, err = sendRequest("POST", "/chat/v1/session/"+sessionId+"/message",
			map[string]string{"message": answer})
		if err != nil {
			color.Red("Failed: %v", err)
			os.Exit(1)
		}
		var answerResp struct {
			Data struct {
				Type            string `json:"type"`
				Text            string `json:"text"`
				TriggerPipeline bool   `json:"trigger_pipeline"`
			} `json:"data"`
		}
		json.Unmarshal(body, &answerResp)
		color.Green("Status: %s, type: %s", resp.Status, answerResp.Data.Type)
		if answerResp.Data.Type == "clarification_complete" {
			color.Green("Flow complete, pipeline triggered: %v", answerResp.Data.TriggerPipeline)
			break
		}
	}

	// 4. Fetch history
	color.Yellow("\n4. Get history")
	resp, body, err = sendRequest("GET", "/chat/v1/session/"+sessionId+"/history", nil)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	var histResp map[string]interface{}
	json.Unmarshal(body, &histResp)
	prettyPrint(histResp)

	// 5. Leave feedback
	color.Yellow("\n5. Send feedback")
	resp, _, err = sendRequest("POST", "/chat/v1/session/"+sessionId+"/feedback",
		map[string]interface{}{"rating": 5, "feedback_text": "great suggestions"})
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)

	color.Cyan("\n✅ Smoke test finished")
}
