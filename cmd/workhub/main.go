package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/pterm/pterm"

	"github.com/workhubhq/workhub-cli/internal/api"
	"github.com/workhubhq/workhub-cli/internal/client"
	"github.com/workhubhq/workhub-cli/internal/config"
	"github.com/workhubhq/workhub-cli/internal/models"
	"github.com/workhubhq/workhub-cli/internal/notify"
	"github.com/workhubhq/workhub-cli/internal/poll"
	"github.com/workhubhq/workhub-cli/internal/review"
	"github.com/workhubhq/workhub-cli/internal/search"
	"github.com/workhubhq/workhub-cli/internal/submit"
	"github.com/workhubhq/workhub-cli/internal/ui"
)

// reloadDelay mirrors the pause the web UI takes between a successful
// action and refreshing the page.
const reloadDelay = 2 * time.Second

// printExamples displays usage examples for the program
func printExamples() {
	fmt.Println("\n📋 Work Hub CLI Usage Examples 📋")

	fmt.Println("\n1. Browse the job listing, filtering for \"logo\" in the design category:")
	fmt.Println("   workhub -search \"logo\" -category design")

	fmt.Println("\n2. Show the detail panel for job 42:")
	fmt.Println("   workhub -job 42")

	fmt.Println("\n3. Accept application 5 (prompts with the payment summary first):")
	fmt.Println("   workhub -accept 5 -freelancer alice -amount 250 -job-title \"Landing page\"")

	fmt.Println("\n4. Submit finished work with two files:")
	fmt.Println("   workhub -submit-work 42 -work-description \"Final deliverables\" -files logo.zip,mockup.pdf")

	fmt.Println("\n5. Leave a review for job 42:")
	fmt.Println("   workhub -review 42 -rating 5 -feedback \"Great client, clear brief, fast payment.\"")

	fmt.Println("\n6. Watch the inbox and unread badge until interrupted:")
	fmt.Println("   workhub -watch")

	fmt.Println("\n7. Watch an open conversation for new messages:")
	fmt.Println("   workhub -watch -conversation 7")

	os.Exit(0)
}

func main() {
	// Command line flags
	configPath := flag.String("config", "workhub.yaml", "Path to the config file")
	baseURL := flag.String("url", "", "Base URL of the marketplace (overrides config)")
	debug := flag.Bool("debug", false, "Enable debug mode")
	yes := flag.Bool("yes", false, "Skip confirmation prompts")
	examples := flag.Bool("examples", false, "Show usage examples")

	listJobs := flag.Bool("jobs", false, "Browse the job listing")
	searchTerm := flag.String("search", "", "Filter the listing by search term")
	category := flag.String("category", "", "Filter the listing by category slug")
	jobID := flag.Int("job", 0, "Show detail for one job")

	acceptID := flag.Int("accept", 0, "Accept the application with this id")
	declineID := flag.Int("decline", 0, "Decline the application with this id")
	freelancer := flag.String("freelancer", "", "Freelancer name shown in the confirmation summary")
	amount := flag.String("amount", "", "Payment amount shown in the confirmation summary")
	jobTitle := flag.String("job-title", "", "Job title shown in the confirmation summary")

	submitFor := flag.Int("submit-work", 0, "Submit work for this job id")
	workDescription := flag.String("work-description", "", "Description of the submitted work")
	notes := flag.String("notes", "", "Additional notes for the submission")
	files := flag.String("files", "", "Comma-separated list of files to attach")
	dropFile := flag.Int("drop-file", -1, "Remove the file at this index from the selection before submitting")

	reviewFor := flag.Int("review", 0, "Submit a review for this job id")
	rating := flag.Int("rating", 0, "Star rating (1-5)")
	feedback := flag.String("feedback", "", "Review feedback text")

	releaseFor := flag.Int("release-payment", 0, "Claim the released payment for this job id")

	register := flag.Bool("register", false, "Register a new account")
	username := flag.String("username", "", "Username for registration")
	email := flag.String("email", "", "Email for registration")
	password := flag.String("password", "", "Password for registration")
	role := flag.String("role", "", "Role to select after registration (freelancer or client)")

	unread := flag.Bool("unread", false, "Show the unread message count")
	watch := flag.Bool("watch", false, "Poll for unread count and inbox changes until interrupted")
	conversationID := flag.Int("conversation", 0, "Conversation id to send to or watch for new messages")
	sendText := flag.String("send", "", "Message text to send to the conversation")
	attach := flag.String("attach", "", "File to attach to the message")

	// Banner control flags (two aliases for the same functionality)
	silence := flag.Bool("silence", false, "Silence the banner")
	noBanner := flag.Bool("nobanner", false, "Silence the banner (alias for -silence)")

	flag.Parse()

	// Display banner (skip if either -silence or -nobanner is set)
	ui.PrintBanner(*silence || *noBanner)

	if *examples {
		printExamples()
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}
	if *baseURL != "" {
		cfg.BaseURL = *baseURL
	}
	if cfg.BaseURL == "" {
		log.Fatal("Base URL is required (-url, config base_url, or WORKHUB_BASE_URL)")
	}

	sess, err := client.NewSession(cfg.BaseURL)
	if err != nil {
		log.Fatalf("Error creating session: %v", err)
	}
	if cfg.SessionCookie != "" {
		sess.SetCookie("sessionid", cfg.SessionCookie)
	}

	app := &app{
		api:      api.New(sess, cfg.Endpoints),
		sess:     sess,
		cfg:      cfg,
		notifier: notify.NewNotifier(),
		debug:    *debug,
		yes:      *yes,
	}
	ctx := context.Background()

	switch {
	case *register:
		app.register(ctx, *username, *email, *password, *role)
	case *jobID > 0:
		app.jobDetail(ctx, *jobID)
	case *acceptID > 0:
		app.applicationAction(ctx, models.ApplicationAction{
			ApplicationID: *acceptID, Action: "accept",
			Freelancer: *freelancer, Amount: *amount, JobTitle: *jobTitle,
		})
	case *declineID > 0:
		app.applicationAction(ctx, models.ApplicationAction{
			ApplicationID: *declineID, Action: "decline",
			Freelancer: *freelancer, Amount: *amount, JobTitle: *jobTitle,
		})
	case *submitFor > 0:
		app.submitWork(ctx, *submitFor, *workDescription, *notes, *files, *dropFile)
	case *reviewFor > 0:
		app.submitReview(ctx, *reviewFor, *rating, *feedback)
	case *releaseFor > 0:
		app.releasePayment(ctx, *releaseFor)
	case *unread:
		app.unreadCount(ctx)
	case *sendText != "" || *attach != "":
		app.sendMessage(ctx, *conversationID, *sendText, *attach)
	case *watch:
		app.watch(*conversationID)
	case *listJobs || *searchTerm != "" || *category != "":
		app.listing(ctx, *searchTerm, *category)
	default:
		flag.Usage()
	}
}

type app struct {
	api      *api.Client
	sess     *client.Session
	cfg      *config.Config
	notifier *notify.Notifier
	debug    bool
	yes      bool
}

// fail reports an error through the notifier the way the web UI does:
// transport and HTTP failures collapse into one "Network Error" toast,
// application failures show the server's message.
func (a *app) fail(err error, networkMessage string) {
	if api.IsNetworkOrHTTP(err) {
		a.notifier.Error("Network Error", networkMessage)
	} else {
		a.notifier.Error("Error", api.UserMessage(err))
	}
	os.Exit(1)
}

func (a *app) confirm(prompt string) bool {
	if a.yes {
		return true
	}
	ok, _ := pterm.DefaultInteractiveConfirm.Show(prompt)
	return ok
}

// prime fetches a page first so mutating requests have a CSRF token.
func (a *app) prime(ctx context.Context) {
	if err := a.sess.Prime(ctx, "/"); err != nil && a.debug {
		log.Printf("Failed to prime CSRF token: %v", err)
	}
}

func (a *app) jobDetail(ctx context.Context, id int) {
	job, err := a.api.JobDetail(ctx, id)
	if err != nil {
		// The job list error path replaces any prior toasts.
		a.notifier.Clear()
		a.notifier.Error("Error", "Failed to load job details. Please try again.")
		os.Exit(1)
	}
	ui.PrintDetail(job)
}

func (a *app) listing(ctx context.Context, term, category string) {
	page, err := a.api.JobListing(ctx)
	if err != nil {
		a.fail(err, "Failed to load the job listing. Please try again.")
	}
	cards, err := search.ParseCards(page)
	if err != nil {
		a.fail(err, "Failed to load the job listing. Please try again.")
	}

	result := search.Filter(cards, search.Query{Term: term, Category: category})
	if result.NoResults {
		pterm.Warning.Println("No jobs found" + result.Summary)
		return
	}
	for _, card := range result.Visible {
		pterm.DefaultSection.Println(card.Title)
		if card.CategoryText != "" {
			pterm.Info.Println(card.CategoryText)
		}
		fmt.Println(card.Description)
	}
	if result.ActiveSearch {
		fmt.Printf("\nShowing %d job(s)%s\n", result.VisibleCount, result.Summary)
	} else {
		fmt.Printf("\nShowing %d job(s)\n", result.VisibleCount)
	}
}

func (a *app) applicationAction(ctx context.Context, action models.ApplicationAction) {
	var prompt string
	if action.Action == "accept" {
		prompt = fmt.Sprintf(
			"Accept this application? The payment will be deducted from your wallet and placed on hold.\n  Freelancer: %s\n  Job: %s\n  Payment Amount: %s",
			action.Freelancer, action.JobTitle, ui.ColorizeAmount(action.Amount))
	} else {
		prompt = fmt.Sprintf(
			"Decline this application? This action cannot be undone.\n  Freelancer: %s\n  Job: %s",
			action.Freelancer, action.JobTitle)
	}
	if !a.confirm(prompt) {
		return
	}

	status := api.StatusDeclined
	if action.Action == "accept" {
		status = api.StatusAccepted
	}

	a.prime(ctx)
	result, err := a.api.UpdateApplicationStatus(ctx, action.ApplicationID, status)
	if err != nil {
		if api.IsNetworkOrHTTP(err) {
			a.notifier.Error("Network Error", "An error occurred while updating the application. Please check your connection and try again.")
		} else {
			a.notifier.Error("Error", api.UserMessage(err))
		}
		os.Exit(1)
	}

	if result.InsufficientFunds {
		// Distinguished error path: point at the wallet instead of a
		// generic failure.
		msg := result.Error
		if msg == "" {
			msg = "Insufficient funds in wallet."
		}
		a.notifier.Error("Insufficient Funds", msg)
		walletURL, _ := a.sess.Resolve(a.api.Endpoints().Wallet)
		pterm.Println("Go to Wallet: " + ui.FormatURL(walletURL, "Wallet", !a.debug))
		os.Exit(1)
	}

	msg := result.Message
	if msg == "" {
		msg = fmt.Sprintf("Application %s successfully!", status)
	}
	a.notifier.Success("Success!", msg)

	time.Sleep(reloadDelay)
	pterm.Info.Println("Refreshing applications...")
}

func (a *app) submitWork(ctx context.Context, jobID int, description, notes, fileList string, dropIndex int) {
	var sel submit.Selection
	if fileList != "" {
		for _, path := range strings.Split(fileList, ",") {
			f, err := submit.FileFromPath(strings.TrimSpace(path))
			if err != nil {
				log.Fatalf("Error: %v", err)
			}
			sel.Add(f)
			if a.debug {
				log.Printf("Selected %s (%s)", f.Name, submit.FormatSize(f.Size))
			}
		}
	}
	if dropIndex >= 0 {
		sel.RemoveAt(dropIndex)
	}

	a.prime(ctx)
	upload, err := submit.Build(jobID, description, notes, &sel)
	if err != nil {
		// Size violations block with a plain alert, not a toast, and the
		// selection is left as it was.
		pterm.Error.Println(err.Error())
		os.Exit(1)
	}

	result, err := a.api.SubmitWork(ctx, upload.Reader(!a.debug), upload.ContentType)
	upload.Finish()
	if err != nil {
		if api.IsNetworkOrHTTP(err) {
			a.notifier.Error("Network Error", "An error occurred while submitting your work. Please try again.")
		} else {
			a.notifier.Error("Submission Failed", api.UserMessage(err))
		}
		os.Exit(1)
	}

	message := fmt.Sprintf("Payment of %s has been released to your account. Uploaded %d file(s).",
		ui.FormatAmount(result.PaymentReleased), len(result.Files))
	a.notifier.Success("Work Submitted Successfully!", message)

	time.Sleep(reloadDelay)
	pterm.Info.Println("Refreshing...")
}

func (a *app) submitReview(ctx context.Context, jobID, rating int, feedback string) {
	if err := review.Validate(rating, feedback); err != nil {
		// Blocked client-side; nothing reaches the network.
		ve := err.(*review.ValidationError)
		a.notifier.Error(ve.Title, ve.Message)
		os.Exit(1)
	}

	a.prime(ctx)
	if err := a.api.SubmitReview(ctx, jobID, rating, strings.TrimSpace(feedback)); err != nil {
		a.fail(err, "An error occurred while submitting your review. Please try again.")
	}
	a.notifier.Success("Review Submitted", fmt.Sprintf("%d stars - %s", rating, review.RatingText(rating)))
}

func (a *app) releasePayment(ctx context.Context, jobID int) {
	if !a.confirm("Are you sure you want to claim this payment?") {
		return
	}

	a.prime(ctx)
	result, err := a.api.ReleasePayment(ctx, jobID)
	if err != nil {
		if api.IsNetworkOrHTTP(err) {
			a.notifier.Error("Error", "An error occurred. Please try again.")
		} else {
			a.notifier.Error("Error", api.UserMessage(err))
		}
		os.Exit(1)
	}

	a.notifier.Success("Success", result.Message)
	time.Sleep(1500 * time.Millisecond)
	pterm.Info.Println("Refreshing...")
}

func (a *app) unreadCount(ctx context.Context) {
	count, err := a.api.UnreadCount(ctx)
	if err != nil {
		// The unread check fails silently by design.
		return
	}
	if count > 0 {
		pterm.Println(pterm.Red("●") + fmt.Sprintf(" %d unread message(s)", count))
	} else {
		pterm.Println("No unread messages")
	}
}

func (a *app) register(ctx context.Context, username, email, password, role string) {
	if username == "" || email == "" || password == "" {
		log.Fatal("Registration requires -username, -email and -password")
	}

	a.prime(ctx)
	form := map[string][]string{
		"username":  {username},
		"email":     {email},
		"password1": {password},
		"password2": {password},
	}
	if _, err := a.api.Register(ctx, form); err != nil {
		if api.IsNetworkOrHTTP(err) {
			a.notifier.Error("Server Error", "An unexpected error occurred. Please check the logs.")
		} else {
			a.notifier.Error("Registration Failed", api.UserMessage(err))
		}
		os.Exit(1)
	}
	a.notifier.Success("Account Created!", "Please select your role to continue.")

	if role == "" {
		pterm.Info.Println("Run again with -role freelancer or -role client to finish setup")
		return
	}
	result, err := a.api.SelectRole(ctx, role)
	if err != nil {
		if api.IsNetworkOrHTTP(err) {
			a.notifier.Error("Network Error", "Please check your connection and try again.")
		} else {
			a.notifier.Error("Setup Failed", api.UserMessage(err))
		}
		os.Exit(1)
	}
	a.notifier.Success("Welcome to Work Hub!", "Your account has been set up successfully.")
	if result.Redirect != "" {
		redirect, _ := a.sess.Resolve(result.Redirect)
		pterm.Println("Continue at: " + ui.FormatURL(redirect, redirect, !a.debug))
	}
}

// sendMessage posts one message to an open conversation. The send action
// stays busy until the request settles; the one-shot call here serializes
// it the same way the form's disabled send button does.
func (a *app) sendMessage(ctx context.Context, conversationID int, content, attachPath string) {
	if conversationID <= 0 {
		log.Fatal("Sending a message requires -conversation")
	}

	var (
		attachment     io.Reader
		attachmentName string
	)
	if attachPath != "" {
		f, err := os.Open(attachPath)
		if err != nil {
			log.Fatalf("Error: %v", err)
		}
		defer f.Close()
		attachment = f
		attachmentName = filepath.Base(attachPath)
	}

	a.prime(ctx)
	err := a.api.SendMessage(ctx, conversationID, content, attachmentName, attachment)
	if e, ok := err.(*api.Error); ok && e.Kind == api.KindValidation {
		// An empty send is silently ignored, like the form's submit guard.
		return
	}
	if err != nil {
		// Blocking alert, not a toast; the typed content is not lost.
		pterm.Error.Println("Failed to send message. Please try again.")
		os.Exit(1)
	}

	// Attachment state is cleared only after a successful send.
	pterm.Success.Println("Message sent")
	pterm.Info.Println("Refreshing conversation...")
}

// watch runs the ambient pollers until interrupted: the navbar unread
// badge, the inbox list, and optionally one open conversation. All
// timers are released on shutdown.
func (a *app) watch(conversationID int) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	badge := notify.NewBadge(func(count int, dot bool) {
		if dot {
			pterm.Println(pterm.Red("●") + fmt.Sprintf(" %d unread message(s)", count))
		} else {
			pterm.Println("No unread messages")
		}
	})
	pollers := []*poll.Poller{
		poll.NewUnreadPoller(a.cfg.UnreadInterval(conversationID > 0), a.api.UnreadCount, badge.Update),
	}

	if conversationID > 0 {
		convURL := a.api.ConversationURL(conversationID)
		fetch := func(ctx context.Context) ([]byte, error) {
			return a.api.FetchFragment(ctx, convURL)
		}

		var conv *poll.Conversation
		if fragment, err := fetch(ctx); err == nil {
			initial, _ := poll.ParseMessages(fragment)
			conv = poll.NewConversation(initial)
			pterm.Info.Printf("Watching conversation %d (%d message(s) so far)\n", conversationID, len(initial))
		} else {
			conv = poll.NewConversation(nil)
			pterm.Info.Printf("Watching conversation %d\n", conversationID)
		}

		pollers = append(pollers, poll.NewConversationPoller(a.cfg.RefreshInterval(), fetch, conv, func(appended []models.Message) {
			for _, m := range appended {
				pterm.Println(pterm.Cyan(m.ID) + " " + messageText(m.HTML))
			}
			// New content arrived, so the view scrolls to the bottom.
		}))
	} else {
		inboxFetch := func(ctx context.Context) ([]byte, error) {
			return a.api.FetchFragment(ctx, a.api.Endpoints().Inbox)
		}
		var current string
		if page, err := inboxFetch(ctx); err == nil {
			if region, ok := poll.ExtractRegion(page, a.cfg.InboxRegion); ok {
				current = region
			}
		}
		pollers = append(pollers, poll.NewInboxPoller(a.cfg.RefreshInterval(), inboxFetch, a.cfg.InboxRegion, current, func(string) {
			pterm.Info.Println("Inbox updated")
		}))
	}

	for _, p := range pollers {
		p.Start(ctx)
	}
	pterm.Info.Println("Polling... press Ctrl+C to stop")

	<-ctx.Done()
	for _, p := range pollers {
		p.Stop()
	}
	pterm.Info.Println("Stopped")
}

// messageText flattens a rendered message node to its visible text.
func messageText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return html
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
