package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dom/design-system-studio/internal/authstate"
	"github.com/dom/design-system-studio/internal/client"
	"github.com/dom/design-system-studio/internal/domain"
	"go.uber.org/zap"
)

// newStore wires a fresh API client into a session store. The client
// serves as both the identity and the profile boundary.
func newStore(apiURL string) (*authstate.Store, *client.Client, *zap.Logger) {
	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Printf("Failed to build logger: %v\n", err)
		os.Exit(1)
	}

	c := client.New(apiURL, logger.Named("client"))
	reconciler := authstate.NewReconciler(c, c, logger.Named("reconciler"))
	store := authstate.NewStore(c, c, reconciler, logger.Named("store"))
	return store, c, logger
}

func registerUser(ctx context.Context, store *authstate.Store, baseName string) string {
	username := fmt.Sprintf("%s_%d", baseName, time.Now().UnixNano()%100000)
	email := username + "@studio.local"

	if err := store.SignUp(ctx, email, "testpassword123", username, baseName); err != nil {
		fmt.Printf("FAILED\n  Error: %v\n", err)
		os.Exit(1)
	}
	return username
}

func demoCmd(apiURL string, args []string) {
	fs := flag.NewFlagSet("demo", flag.ExitOnError)
	creativity := fs.Int("creativity", 50, "Creativity scale (0-100)")
	fs.Parse(args)

	ctx := context.Background()
	store, c, logger := newStore(apiURL)
	defer logger.Sync()

	if err := store.Start(ctx); err != nil {
		fmt.Printf("Failed to start session store: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	fmt.Println("=== Studio Demo: Full Flow ===")
	fmt.Println()

	// 1. Sign up
	fmt.Print("Registering user... ")
	username := registerUser(ctx, store, "Demo")
	fmt.Printf("OK (user: %s)\n", username)

	state := store.State()
	if state.User == nil || state.Session == nil {
		fmt.Println("Error: no session after signup")
		os.Exit(1)
	}
	if state.Profile != nil {
		fmt.Printf("  Profile: %s\n", state.Profile.Username)
	}

	// 2. Check quota
	remaining, err := c.Remaining(ctx)
	if err != nil {
		fmt.Printf("Failed to fetch quota: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("  Generations remaining this month: %d\n", remaining)

	// 3. Generate
	fmt.Println()
	fmt.Print("Generating design system... ")
	system, err := c.Generate(ctx, client.GenerateRequest{
		Name:            "Demo System",
		Tags:            []string{"minimal", "dark"},
		Prompt:          "a calm dashboard theme",
		CreativityScale: *creativity,
		IsPublic:        true,
	})
	if err != nil {
		fmt.Printf("FAILED\n  Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("OK (id: %s)\n", system.ID)

	// 4. Remix it
	fmt.Print("Fetching remix seed... ")
	seed, err := c.GetRemixSeed(ctx, system.ID)
	if err != nil {
		fmt.Printf("FAILED\n  Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("OK (source: %s)\n", seed.SourceName)

	fmt.Print("Generating remix... ")
	remix, err := c.Generate(ctx, client.GenerateRequest{
		Name:            seed.SourceName + " Remix",
		Tags:            seed.Tags,
		CreativityScale: seed.Creativity,
		RemixOf:         &seed.SourceID,
		IsPublic:        true,
	})
	if err != nil {
		fmt.Printf("FAILED\n  Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("OK (id: %s)\n", remix.ID)

	// 5. Update profile through the store
	fmt.Print("Updating profile... ")
	newName := "Demo Renamed"
	if err := store.UpdateProfile(ctx, domain.ProfileUpdate{FirstName: &newName}); err != nil {
		fmt.Printf("FAILED\n  Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("OK")

	// 6. Sign out
	fmt.Print("Signing out... ")
	if err := store.SignOut(ctx); err != nil {
		fmt.Printf("FAILED\n  Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("OK")

	// Give the sign-out event time to propagate back through the stream.
	time.Sleep(200 * time.Millisecond)

	state = store.State()
	if state.Session != nil || state.User != nil || state.Profile != nil {
		fmt.Println("Warning: store still holds state after sign-out")
	}

	fmt.Println()
	fmt.Println("Demo complete.")
}

func generateCmd(apiURL string, args []string) {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	name := fs.String("name", "Untitled System", "Design system name")
	tagList := fs.String("tags", "minimal", "Comma-separated tags (1-5)")
	prompt := fs.String("prompt", "", "Optional style prompt")
	creativity := fs.Int("creativity", 50, "Creativity scale (0-100)")
	private := fs.Bool("private", false, "Keep the system out of the public gallery")
	fs.Parse(args)

	ctx := context.Background()
	store, c, logger := newStore(apiURL)
	defer logger.Sync()

	if err := store.Start(ctx); err != nil {
		fmt.Printf("Failed to start session store: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	fmt.Print("Registering user... ")
	username := registerUser(ctx, store, "Generator")
	fmt.Printf("OK (user: %s)\n", username)

	fmt.Print("Generating... ")
	system, err := c.Generate(ctx, client.GenerateRequest{
		Name:            *name,
		Tags:            strings.Split(*tagList, ","),
		Prompt:          *prompt,
		CreativityScale: *creativity,
		IsPublic:        !*private,
	})
	if err != nil {
		fmt.Printf("FAILED\n  Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("OK")

	fmt.Println()
	fmt.Printf("  ID:     %s\n", system.ID)
	fmt.Printf("  Name:   %s\n", system.Name)
	fmt.Printf("  Author: %s\n", system.AuthorUsername)
	fmt.Printf("  Tokens: %s\n", string(system.Tokens))
}

func galleryCmd(apiURL string, args []string) {
	fs := flag.NewFlagSet("gallery", flag.ExitOnError)
	limit := fs.Int("limit", 20, "Page size")
	offset := fs.Int("offset", 0, "Page offset")
	fs.Parse(args)

	ctx := context.Background()
	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Printf("Failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	c := client.New(apiURL, logger.Named("client"))

	systems, err := c.ListDesignSystems(ctx, *limit, *offset)
	if err != nil {
		fmt.Printf("Failed to list design systems: %v\n", err)
		os.Exit(1)
	}

	if len(systems) == 0 {
		fmt.Println("No public design systems yet.")
		return
	}

	fmt.Printf("%d public design system(s):\n\n", len(systems))
	for _, system := range systems {
		fmt.Printf("  %s  %-30s  by %s\n", system.ID, system.Name, system.AuthorUsername)
	}
}
