package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ethanbaker/mitra/pkg/chat"
	"github.com/ethanbaker/mitra/pkg/utils"
)

// startInteractiveSession reads commands from in until exit or end of input
func startInteractiveSession(ctx context.Context, in io.Reader, out io.Writer, branding utils.Branding, view *chat.View) error {
	fmt.Fprintf(out, "%s started. Type 'exit' to quit.\n", branding.Title)
	if view.Snapshot().BatchEnabled {
		fmt.Fprintln(out, "Commands: /upload <path>, /results, /history")
	}

	// The greeting is the first message of the transcript
	if transcript := view.Transcript(); len(transcript) > 0 {
		fmt.Fprintf(out, "Assistant: %s\n", transcript[0].Content)
	}

	// Create scanner for reading user input
	scanner := bufio.NewScanner(in)

	for {
		fmt.Fprint(out, "\n> ")

		if !scanner.Scan() {
			break
		}

		line := scanner.Text()
		command := strings.TrimSpace(line)

		switch {
		case command == "exit":
			return nil

		case command == "":
			continue

		case command == "/history":
			printHistory(out, view)

		case command == "/results":
			printResults(out, view.Snapshot())

		case command == "/upload" || strings.HasPrefix(command, "/upload "):
			upload(ctx, out, view, strings.TrimSpace(strings.TrimPrefix(command, "/upload")))

		default:
			reply, err := view.SubmitQuery(ctx, line)
			if err != nil {
				fmt.Fprintf(out, "Error: %v\n", err)
				continue
			}
			fmt.Fprintf(out, "Assistant: %s\n", reply.Content)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading input: %w", err)
	}

	return nil
}

// upload selects the file at path and sends it as a batch
func upload(ctx context.Context, out io.Writer, view *chat.View, path string) {
	if path == "" {
		fmt.Fprintln(out, "Usage: /upload <path>")
		return
	}

	file, err := chat.LoadFile(path)
	if err != nil {
		fmt.Fprintf(out, "Error: %v\n", err)
		return
	}

	if err := view.SelectFile(file); err != nil {
		fmt.Fprintf(out, "Error: %v\n", err)
		return
	}

	fmt.Fprintf(out, "Processing %s...\n", file.Name)
	if err := view.SubmitBatch(ctx); err != nil {
		if errors.Is(err, chat.ErrBatchDisabled) {
			fmt.Fprintln(out, "CSV uploads are disabled")
			return
		}
		fmt.Fprintf(out, "Error: %v\n", err)
		return
	}

	snap := view.Snapshot()
	if snap.BatchError != "" {
		fmt.Fprintf(out, "Error: %s\n", snap.BatchError)
		view.DismissError()
		return
	}

	printResults(out, snap)
}

func printResults(out io.Writer, snap chat.Snapshot) {
	if len(snap.Results) == 0 {
		fmt.Fprintln(out, "No results")
		return
	}

	fmt.Fprintf(out, "Processing Results (%d)\n", len(snap.Results))
	for i, result := range snap.Results {
		fmt.Fprintf(out, "\n%d. Query: %s\n", i+1, result.Query)
		fmt.Fprintf(out, "   Response: %s\n", result.Response)
		fmt.Fprintf(out, "   Source: %s | Confidence: %.0f%%\n", result.Source, result.Confidence*100)
	}
}

func printHistory(out io.Writer, view *chat.View) {
	for _, msg := range view.Transcript() {
		sender := "Assistant"
		if msg.Role == chat.RoleUser {
			sender = "You"
		}
		fmt.Fprintf(out, "[%s] %s: %s\n", msg.Timestamp.Format("15:04"), sender, msg.Content)
	}
}
