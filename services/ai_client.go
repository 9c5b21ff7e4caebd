package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"pet-game-system/models"
)

// AIClient talks to an external flavor-text service. Its output is
// purely cosmetic — failures degrade to canned lines, never to errors
// surfaced to the player.
type AIClient struct {
	BaseURL string
	Token   string
	Client  *http.Client
}

func NewAIClient(baseURL, token string) *AIClient {
	return &AIClient{
		BaseURL: baseURL,
		Token:   token,
		Client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type flavorRequest struct {
	Message string  `json:"message"`
	Action  string  `json:"action,omitempty"`
	Mood    string  `json:"mood"`
	Level   int     `json:"level"`
	Hunger  float64 `json:"hunger"`
	Energy  float64 `json:"energy"`
}

type flavorResponse struct {
	Text string `json:"text"`
}

// GenerateFlavorText asks the service for a pet reply to the player's
// message. The stats only shape the tone — nothing here affects state.
func (c *AIClient) GenerateFlavorText(message, action string, stats *models.PetStats) string {
	if c == nil || c.BaseURL == "" {
		return FallbackLine(action, Mood(stats))
	}

	reqBody := flavorRequest{
		Message: message,
		Action:  action,
		Mood:    Mood(stats),
		Level:   stats.Level,
		Hunger:  stats.Hunger,
		Energy:  stats.Energy,
	}
	jsonData, _ := json.Marshal(reqBody)

	url := fmt.Sprintf("%s/v1/pet-chat", c.BaseURL)
	req, err := http.NewRequest("POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return FallbackLine(action, reqBody.Mood)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.Token != "" {
		req.Header.Set("X-Service-Token", c.Token)
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		log.Printf("⚠️ AI service unreachable, using fallback: %v", err)
		return FallbackLine(action, reqBody.Mood)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		log.Printf("⚠️ AI service returned status %d, using fallback", resp.StatusCode)
		return FallbackLine(action, reqBody.Mood)
	}

	var out flavorResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil || out.Text == "" {
		return FallbackLine(action, reqBody.Mood)
	}
	return out.Text
}

var fallbackLines = map[string][]string{
	"feed": {
		"Mmm, that's delicious! Thank you for feeding me! 😋",
		"Yummy! I feel so much better now! *happy munching sounds* 🍎",
		"You take such good care of me! This tastes amazing! 😊",
	},
	"play": {
		"Wheee! This is so much fun! 🎾",
		"Again, again! I love playing with you! 😄",
	},
	"sleep": {
		"*yawns* Sweet dreams... 💤",
		"Zzz... best nap ever... 😴",
	},
	"pet": {
		"*purrs happily* ❤️",
		"That feels nice! You're the best! 😊",
	},
}

var moodLines = map[string][]string{
	MoodDead:      {"..."},
	MoodEcstatic:  {"I'm having the BEST day ever! 🌟", "Everything is amazing! 😄"},
	MoodHappy:     {"I'm feeling great today! 😊", "Hi there! So glad to see you! 👋"},
	MoodContent:   {"Just hanging out, doing okay! 🙂"},
	MoodSad:       {"I could use a little attention... 🥺"},
	MoodDepressed: {"*sighs quietly*... I don't feel so good... 😞"},
}

// FallbackLine picks a canned response when the AI service is down.
func FallbackLine(action, mood string) string {
	if lines, ok := fallbackLines[action]; ok {
		return lines[int(RandFloat64()*float64(len(lines)))%len(lines)]
	}
	if lines, ok := moodLines[mood]; ok {
		return lines[int(RandFloat64()*float64(len(lines)))%len(lines)]
	}
	return "Hi! I'm happy you're here! 😊"
}
