package main

import (
	"fmt"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	// Global flags
	apiURL := "http://localhost:8080"
	if envURL := os.Getenv("API_URL"); envURL != "" {
		apiURL = envURL
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "demo":
		demoCmd(apiURL, args)
	case "generate":
		generateCmd(apiURL, args)
	case "gallery":
		galleryCmd(apiURL, args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`Studio CLI - Development tool for the design system backend

USAGE:
  studio <command> [options]

COMMANDS:
  demo      Register a user, generate a system, remix it, and sign out
  generate  Register a throwaway user and generate one design system
  gallery   List public design systems
  help      Show this help message

ENVIRONMENT:
  API_URL   Backend API URL (default: http://localhost:8080)

EXAMPLES:
  # Run the full signup/generate/remix flow
  studio demo

  # Generate a dark, minimal system with high creativity
  studio generate --name="Midnight" --tags=dark,minimal --creativity=80

  # Browse the public gallery
  studio gallery --limit=10`)
}
