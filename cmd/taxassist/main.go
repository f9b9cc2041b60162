package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/kbility/taxassist/internal/client"
	"github.com/kbility/taxassist/internal/config"
	"github.com/kbility/taxassist/internal/document"
	"github.com/kbility/taxassist/internal/workflow"
)

// app holds the per-process workflow state: the view router, the upload
// pipeline, the chat sessions, and the notes panel they synchronize with.
type app struct {
	transport workflow.Transport
	router    *workflow.Router
	pipeline  *workflow.Pipeline
	signal    *workflow.SummarySignal
	docChat   *workflow.ChatSession
	genChat   *workflow.ChatSession
	notes     *workflow.NotesPanel
	irs       *workflow.QuerySession
	in        *bufio.Scanner
	log       *slog.Logger
}

func main() {
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	cfg := config.Load()
	c := client.New(cfg.ServerURL, cfg.HTTPTimeout)
	handoff := workflow.NewHandoff(cfg.StateDir)

	a := &app{
		transport: c,
		irs:       workflow.NewQuerySession(c),
		in:        bufio.NewScanner(os.Stdin),
		log:       log,
	}
	a.router = workflow.NewRouter(handoff, a.bindSessions)
	a.pipeline = workflow.NewPipeline(c, handoff, a.restart)

	if _, err := a.router.Start(); err != nil {
		log.Warn("could not restore previous results", "error", err)
	}
	a.bindSessions()

	a.run(context.Background())
}

// restart re-enters the router after an upload, consuming the handoff the
// pipeline just wrote. This replaces a browser-style page reload with an
// in-process state reset.
func (a *app) restart() {
	if _, err := a.router.Start(); err != nil {
		a.log.Warn("could not restore results", "error", err)
	}
	a.bindSessions()
}

// bindSessions rebuilds the chat sessions and notes panel against the
// current results, if any. It runs at startup, after every upload, and
// whenever the router returns to Welcome, so navigating back into a chat
// always finds a live session.
func (a *app) bindSessions() {
	a.signal = &workflow.SummarySignal{}
	a.genChat = workflow.NewChatSession(a.transport, "", nil)
	if title := a.router.Title(); title != "" {
		a.docChat = workflow.NewChatSession(a.transport, title, a.signal)
		a.notes = workflow.NewNotesPanel(a.transport, title, a.signal)
	} else {
		a.docChat = nil
		a.notes = workflow.NewNotesPanel(a.transport, workflow.GeneralOwnerKey, a.signal)
	}
}

func (a *app) run(ctx context.Context) {
	for {
		switch a.router.Current() {
		case workflow.ViewWelcome:
			if !a.welcomeView() {
				return
			}
		case workflow.ViewUpload:
			a.uploadView(ctx)
		case workflow.ViewResults:
			a.resultsView(ctx)
		case workflow.ViewChat:
			a.chatView(ctx)
		case workflow.ViewIrsQuery:
			a.irsView(ctx)
		}
	}
}

func (a *app) welcomeView() bool {
	fmt.Println("\n=== Tax Assistant ===")
	fmt.Println("  [u] upload tax documents")
	fmt.Println("  [c] general tax chat")
	fmt.Println("  [i] IRS information lookup")
	fmt.Println("  [q] quit")

	switch a.prompt("> ") {
	case "u":
		a.router.Activate(workflow.ViewUpload, nil)
	case "c":
		a.router.Activate(workflow.ViewChat, nil)
	case "i":
		a.router.Activate(workflow.ViewIrsQuery, nil)
	case "q":
		return false
	}
	return true
}

func (a *app) uploadView(ctx context.Context) {
	fmt.Println("\n--- Upload ---")
	fmt.Println("Enter one or more PDF/image paths (space-separated), or blank to go back.")
	line := a.prompt("file> ")
	if line == "" {
		a.router.Activate(workflow.ViewWelcome, nil)
		return
	}

	var ups []document.Upload
	for _, path := range strings.Fields(line) {
		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Printf("cannot read %s: %v\n", path, err)
			return
		}
		ups = append(ups, document.Upload{
			Name: filepath.Base(path),
			MIME: mimeForExt(path),
			Data: data,
		})
	}

	fmt.Println("Extracting... this may take a moment.")
	var err error
	if len(ups) == 1 {
		err = a.pipeline.SubmitSingle(ctx, ups[0])
	} else {
		err = a.pipeline.SubmitMultiple(ctx, ups)
	}
	if err != nil {
		// Stay on the Upload view; nothing was persisted.
		fmt.Printf("Upload failed: %v\n", err)
	}
}

func (a *app) resultsView(ctx context.Context) {
	res, ok := a.router.Results()
	if !ok {
		fmt.Println("\n--- Results ---")
		fmt.Println("No documents extracted yet.")
		a.router.Activate(workflow.ViewWelcome, nil)
		return
	}

	fmt.Printf("\n--- Results: %s ---\n", a.router.Title())
	for i, row := range res.Table {
		fmt.Printf("Document %d:\n", i+1)
		for _, col := range document.TableColumns {
			if v, ok := row[col]; ok && v != "" {
				fmt.Printf("  %-28s %s\n", col, v)
			}
		}
	}

	fmt.Println("  [c] discuss these documents   [d] download CSV   [w] start over")
	switch a.prompt("> ") {
	case "c":
		a.router.Activate(workflow.ViewChat, nil)
	case "d":
		a.downloadCSV(ctx)
	case "w":
		a.router.Activate(workflow.ViewWelcome, nil)
	}
}

func (a *app) chatView(ctx context.Context) {
	session := a.genChat
	label := "general tax chat"
	if a.docChat != nil {
		session = a.docChat
		label = "about " + a.docChat.OwnerKey()
	}

	fmt.Printf("\n--- Chat (%s) ---\n", label)
	fmt.Println("Type a question, /summary to generate notes, /notes to view them, /export to save them as HTML, /back to leave.")

	for {
		line := a.prompt("chat> ")
		switch line {
		case "/back", "":
			session.Abandon()
			a.router.Activate(workflow.ViewWelcome, nil)
			return
		case "/summary":
			warning, err := session.RequestSummary(ctx)
			if err != nil {
				fmt.Println(err)
				continue
			}
			if warning != "" {
				fmt.Println("Note:", warning)
				continue
			}
			if a.notes != nil {
				if err := a.notes.Sync(ctx); err != nil {
					a.log.Warn("notes refresh failed", "error", err)
				}
			}
			a.printLatest(session)
		case "/notes":
			if a.notes == nil || a.notes.Text() == "" {
				fmt.Println("No summary notes yet. Use /summary first.")
				continue
			}
			fmt.Println(a.notes.Text())
		case "/export":
			a.exportNotes()
		default:
			if err := session.Send(ctx, line); err != nil {
				fmt.Println(err)
				continue
			}
			a.printLatest(session)
		}
	}
}

func (a *app) irsView(ctx context.Context) {
	fmt.Println("\n--- IRS Lookup ---")
	fmt.Println("Type a question, or one of: latest-updates, tax-brackets, standard-deduction, filing-deadlines. Blank to go back.")

	for {
		line := a.prompt("irs> ")
		if line == "" {
			a.router.Activate(workflow.ViewWelcome, nil)
			return
		}
		var answer string
		switch line {
		case "latest-updates", "tax-brackets", "standard-deduction", "filing-deadlines":
			answer = a.irs.Quick(ctx, line)
		default:
			answer = a.irs.Search(ctx, line)
		}
		fmt.Println(workflow.PlainText(answer))
	}
}

func (a *app) downloadCSV(ctx context.Context) {
	f, err := os.Create("tax_documents.csv")
	if err != nil {
		fmt.Printf("cannot create file: %v\n", err)
		return
	}
	defer f.Close()

	dl, ok := a.transport.(*client.Client)
	if !ok {
		return
	}
	if err := dl.DownloadCSV(ctx, f); err != nil {
		fmt.Printf("download failed: %v\n", err)
		return
	}
	fmt.Println("Saved tax_documents.csv")
}

func (a *app) exportNotes() {
	if a.notes == nil || a.notes.Text() == "" {
		fmt.Println("No summary notes yet. Use /summary first.")
		return
	}
	html, err := a.notes.HTML()
	if err != nil {
		fmt.Printf("export failed: %v\n", err)
		return
	}
	if err := os.WriteFile("tax_notes.html", []byte(html), 0o644); err != nil {
		fmt.Printf("cannot write tax_notes.html: %v\n", err)
		return
	}
	fmt.Println("Saved tax_notes.html")
}

func (a *app) printLatest(session *workflow.ChatSession) {
	msgs := session.Messages()
	if len(msgs) == 0 {
		return
	}
	last := msgs[len(msgs)-1]
	if last.Role == workflow.RoleAssistant {
		fmt.Println(last.Content)
	}
}

func (a *app) prompt(p string) string {
	fmt.Print(p)
	if !a.in.Scan() {
		return ""
	}
	return strings.TrimSpace(a.in.Text())
}

func mimeForExt(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return "application/pdf"
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	default:
		return "application/octet-stream"
	}
}
