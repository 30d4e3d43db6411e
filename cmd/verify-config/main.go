// Command verify-config checks the environment the game reads at startup
// and reports what will work, without contacting any Azure service.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// ANSI color codes for formatted output
const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorBlue   = "\033[34m"
)

type envCheck struct {
	Name     string
	Required bool
	Secret   bool
	Note     string
}

var checks = []envCheck{
	{Name: "AZURE_OPENAI_ENDPOINT", Required: true, Note: "Azure OpenAI resource URL"},
	{Name: "AZURE_OPENAI_KEY", Required: true, Secret: true, Note: "Azure OpenAI API key"},
	{Name: "AZURE_OPENAI_DEPLOYMENT", Note: "defaults to gpt-35-turbo"},
	{Name: "AZURE_OPENAI_API_VERSION", Note: "defaults to 2023-05-15"},
	{Name: "AZURE_SPEECH_KEY", Secret: true, Note: "voice features disabled without it"},
	{Name: "AZURE_SPEECH_REGION", Note: "voice features disabled without it"},
	{Name: "AZURE_SPEECH_LANGUAGE", Note: "defaults to en-US"},
	{Name: "AZURE_SPEECH_VOICE", Note: "defaults to the region's standard voice"},
	{Name: "REDIS_ADDR", Note: "sessions are not persisted without it"},
	{Name: "PERSONA_FILE", Note: "defaults to the built-in persona"},
	{Name: "PLAYER_NAME", Note: "defaults to Stefan"},
	{Name: "LOG_LEVEL", Note: "defaults to info"},
	{Name: "LOG_FILE", Note: "logs go to stderr without it"},
}

func main() {
	fmt.Printf("%s--- Game Companion Config Verifier ---%s\n\n", ColorBlue, ColorReset)

	if err := godotenv.Load(); err == nil {
		fmt.Printf("Loaded %s.env%s from the working directory.\n\n", ColorBlue, ColorReset)
	}

	allRequiredSet := true
	for _, c := range checks {
		value := os.Getenv(c.Name)
		switch {
		case value != "":
			fmt.Printf("  %s[OK]%s   %-26s %s\n", ColorGreen, ColorReset, c.Name, display(c, value))
		case c.Required:
			fmt.Printf("  %s[FAIL]%s %-26s missing (%s)\n", ColorRed, ColorReset, c.Name, c.Note)
			allRequiredSet = false
		default:
			fmt.Printf("  %s[WARN]%s %-26s not set, %s\n", ColorYellow, ColorReset, c.Name, c.Note)
		}
	}

	speechKey := os.Getenv("AZURE_SPEECH_KEY")
	speechRegion := os.Getenv("AZURE_SPEECH_REGION")
	fmt.Println()
	if speechKey != "" && speechRegion != "" {
		fmt.Printf("%s✅ Voice features will be enabled.%s\n", ColorGreen, ColorReset)
	} else {
		fmt.Printf("%s⚠️  Voice features will be disabled (text input still works).%s\n", ColorYellow, ColorReset)
	}

	fmt.Println("\n--------------------------")
	if allRequiredSet {
		fmt.Printf("%s✅ The game can start with this configuration.%s\n", ColorGreen, ColorReset)
	} else {
		fmt.Printf("%s❌ Required Azure OpenAI settings are missing; the game will not start.%s\n", ColorRed, ColorReset)
		os.Exit(1)
	}
}

// display masks secrets down to their first and last two characters.
func display(c envCheck, value string) string {
	if !c.Secret {
		return value
	}
	if len(value) <= 6 {
		return strings.Repeat("*", len(value))
	}
	return value[:2] + strings.Repeat("*", len(value)-4) + value[len(value)-2:]
}
