// Command campaign is the admin portal on the command line: sign in, look at
// the dashboard and compose and send marketing campaigns.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"

	"github.com/unclebandit/clinic-booking/internal/campaign"
	"github.com/unclebandit/clinic-booking/internal/client"
	"github.com/unclebandit/clinic-booking/internal/config"
	appErrors "github.com/unclebandit/clinic-booking/internal/errors"
	"github.com/unclebandit/clinic-booking/internal/model"
	"github.com/unclebandit/clinic-booking/internal/session"
)

const usage = `usage: campaign <command> [flags]

commands:
  login          sign in as admin (-username, -password)
  send-otp       request a patient login code (-phone)
  verify         sign in as patient (-phone, -otp)
  logout         forget the stored session
  whoami         show the signed-in user
  dashboard      show stats, appointments and campaigns
  estimate       show the recipient estimate for an audience (-audience)
  compose        interactive campaign wizard
  send           send a campaign without the wizard (-template | -title/-message, -audience, -limit)
  notifications  list a patient's notifications (-user)
  review         rate a finished appointment (-appointment, -rating, -comment)
  reviews        list reviews (-appointment)
  profile        show the signed-in user, or change it (-name, -fcm-token)
`

type app struct {
	cfg     *config.Config
	session *session.Session
	api     *client.Client
	out     io.Writer
}

func main() {
	log.SetFlags(0)
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg := config.Load()
	sess := session.New(session.FileStore{Path: cfg.SessionFile})
	if err := sess.Init(); err != nil {
		log.Fatal("❌ ", err)
	}
	a := &app{cfg: cfg, session: sess, api: client.New(cfg.APIBaseURL, sess), out: os.Stdout}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := a.run(ctx, os.Args[1], os.Args[2:], os.Stdin); err != nil {
		log.Fatal("❌ ", describe(err))
	}
}

func (a *app) run(ctx context.Context, cmd string, args []string, in io.Reader) error {
	switch cmd {
	case "login":
		return a.login(ctx, args)
	case "send-otp":
		return a.sendOTP(ctx, args)
	case "verify":
		return a.verify(ctx, args)
	case "logout":
		if err := a.session.Logout(); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "👋 Signed out")
		return nil
	case "whoami":
		u := a.session.User()
		if u == nil {
			fmt.Fprintln(a.out, "not signed in")
			return nil
		}
		fmt.Fprintf(a.out, "%s (%s)\n", firstNonEmpty(u.Name, u.Username, u.Phone, u.ID), u.Role)
		return nil
	case "dashboard":
		return a.dashboard(ctx)
	case "estimate":
		return a.estimate(ctx, args)
	case "compose":
		if err := a.requireAdmin(); err != nil {
			return err
		}
		return runWizard(ctx, a.composer(), in, a.out)
	case "send":
		return a.send(ctx, args)
	case "notifications":
		return a.notifications(ctx, args)
	case "review":
		return a.review(ctx, args)
	case "reviews":
		return a.reviews(ctx, args)
	case "profile":
		return a.profile(ctx, args)
	}
	return fmt.Errorf("unknown command %q\n%s", cmd, usage)
}

func (a *app) requireAdmin() error {
	if !a.session.IsAdmin() {
		return errors.New("sign in as admin first: campaign login -username ... -password ...")
	}
	return nil
}

func (a *app) estimator() campaign.Estimator {
	return campaign.NewRemoteEstimator(a.api, campaign.EstimateTable(a.cfg.EstimateTable), a.cfg.EstimateCacheTTL)
}

func (a *app) composer() *campaign.Composer {
	return campaign.NewComposer(campaign.NewDispatcher(a.api), a.estimator(), func() {
		if err := a.printCampaigns(context.Background()); err != nil {
			log.Println("⚠️ Could not refresh campaigns:", describe(err))
		}
	})
}

func (a *app) login(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	username := fs.String("username", "", "admin username")
	password := fs.String("password", "", "admin password")
	if err := fs.Parse(args); err != nil {
		return err
	}

	res, err := a.api.AdminLogin(ctx, *username, *password)
	if err != nil {
		return err
	}
	if err := a.session.Login(res.Token, res.User); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "✅ Signed in as", firstNonEmpty(res.User.Name, res.User.Username))
	return nil
}

func (a *app) sendOTP(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("send-otp", flag.ContinueOnError)
	phone := fs.String("phone", "", "patient phone number")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if _, err := a.api.SendOTP(ctx, *phone); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "📨 A login code was sent to", *phone)
	return nil
}

func (a *app) verify(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("verify", flag.ContinueOnError)
	phone := fs.String("phone", "", "patient phone number")
	otp := fs.String("otp", "", "code received by SMS")
	if err := fs.Parse(args); err != nil {
		return err
	}

	res, err := a.api.VerifyOTP(ctx, *phone, *otp)
	if err != nil {
		return err
	}
	if err := a.session.Login(res.Token, res.User); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "✅ Signed in as", firstNonEmpty(res.User.Name, res.User.Phone))
	return nil
}

func (a *app) dashboard(ctx context.Context) error {
	if err := a.requireAdmin(); err != nil {
		return err
	}
	d, err := a.api.Refresh(ctx)
	if err != nil {
		return err
	}

	s := d.Stats
	fmt.Fprintf(a.out, "📊 appointments: %d total, %d pending, %d confirmed, %d completed, %d cancelled\n",
		s.TotalAppointments, s.PendingAppointments, s.ConfirmedAppointments, s.CompletedAppointments, s.CancelledAppointments)
	fmt.Fprintf(a.out, "   patients: %d  doctors: %d  rating: %.1f\n", s.TotalPatients, s.TotalDoctors, s.AvgRating)
	for _, ap := range d.Appointments {
		fmt.Fprintf(a.out, "📅 %s  %-10s %s / %s / %s\n",
			ap.AppointmentDate.Format("2006-01-02 15:04"), ap.Status, ap.PatientName, ap.DoctorName, ap.ServiceName)
	}
	writeCampaigns(a.out, d.Campaigns)
	return nil
}

func (a *app) printCampaigns(ctx context.Context) error {
	campaigns, err := a.api.ListCampaigns(ctx)
	if err != nil {
		return err
	}
	writeCampaigns(a.out, campaigns)
	return nil
}

func writeCampaigns(w io.Writer, campaigns []model.Campaign) {
	for _, c := range campaigns {
		fmt.Fprintf(w, "📣 %-6s %-9s sent %d, opened %d  %s\n",
			c.Status, c.TargetAudience, c.SentCount, c.OpenedCount, c.Title)
	}
}

func (a *app) estimate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("estimate", flag.ContinueOnError)
	audience := fs.String("audience", string(model.AudienceAll), "all, active, inactive or new")
	if err := fs.Parse(args); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "~%d recipients\n", a.estimator().Estimate(ctx, model.Audience(*audience)))
	return nil
}

// send drives the same composer as the wizard from flags.
func (a *app) send(ctx context.Context, args []string) error {
	if err := a.requireAdmin(); err != nil {
		return err
	}
	fs := flag.NewFlagSet("send", flag.ContinueOnError)
	template := fs.String("template", "", "built-in template id")
	title := fs.String("title", "", "campaign title, overrides the template")
	message := fs.String("message", "", "campaign message, overrides the template")
	audience := fs.String("audience", string(model.AudienceAll), "all, active, inactive or new")
	limit := fs.String("limit", "", "send to this many random patients instead of everybody")
	if err := fs.Parse(args); err != nil {
		return err
	}

	c := a.composer()
	events := []campaign.Event{campaign.StartBlank{}}
	if *template != "" {
		events[0] = campaign.SelectTemplate{ID: *template}
	}
	events = append(events, campaign.Edit{
		Title:   firstNonEmpty(*title, templateField(*template, true)),
		Message: firstNonEmpty(*message, templateField(*template, false)),
	}, campaign.Next{}, campaign.ChooseAudience{Audience: model.Audience(*audience)})
	if *limit != "" {
		events = append(events, campaign.ChooseRecipients{Mode: campaign.ModeLimited, Raw: *limit})
	}
	for _, e := range events {
		if err := c.Apply(e); err != nil {
			return err
		}
	}
	for _, w := range c.Warnings() {
		fmt.Fprintln(a.out, "⚠️", w)
	}

	summary, err := c.Submit(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, "🎉", summary.Message)
	return nil
}

func (a *app) notifications(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("notifications", flag.ContinueOnError)
	user := fs.String("user", "", "patient id, defaults to the signed-in user")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *user == "" {
		if u := a.session.User(); u != nil {
			*user = u.ID
		}
	}

	list, err := a.api.ListNotifications(ctx, *user)
	if err != nil {
		return err
	}
	for _, n := range list {
		mark := "•"
		if n.Read {
			mark = " "
		}
		fmt.Fprintf(a.out, "%s %s  %s\n", mark, n.CreatedAt.Format("2006-01-02"), n.Title)
	}
	return nil
}

func (a *app) review(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("review", flag.ContinueOnError)
	appointment := fs.String("appointment", "", "appointment id")
	rating := fs.Int("rating", 0, "1 to 5")
	comment := fs.String("comment", "", "optional comment")
	if err := fs.Parse(args); err != nil {
		return err
	}
	u := a.session.User()
	if u == nil {
		return client.ErrNoSession
	}

	rv, err := a.api.CreateReview(ctx, model.ReviewCreate{
		AppointmentID: *appointment,
		PatientID:     u.ID,
		Rating:        *rating,
		Comment:       *comment,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "⭐ Thanks, rated %d/5\n", rv.Rating)
	return nil
}

func (a *app) reviews(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("reviews", flag.ContinueOnError)
	appointment := fs.String("appointment", "", "only reviews of this appointment")
	if err := fs.Parse(args); err != nil {
		return err
	}

	list, err := a.api.ListReviews(ctx, *appointment)
	if err != nil {
		return err
	}
	for _, rv := range list {
		fmt.Fprintf(a.out, "%s %d/5 %s\n", rv.AppointmentID, rv.Rating, rv.Comment)
	}
	return nil
}

// profile prints the signed-in user. With flags it updates the user first
// and keeps the stored session in step.
func (a *app) profile(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("profile", flag.ContinueOnError)
	name := fs.String("name", "", "display name")
	fcmToken := fs.String("fcm-token", "", "device token for push notifications")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var (
		u   *model.User
		err error
	)
	if *name == "" && *fcmToken == "" {
		u, err = a.api.Profile(ctx)
	} else {
		u, err = a.api.UpdateProfile(ctx, model.ProfileUpdate{Name: *name, FCMToken: *fcmToken})
		if err == nil {
			err = a.session.Login(a.session.Token(), *u)
		}
	}
	if err != nil {
		return err
	}

	push := "off"
	if u.FCMToken != "" {
		push = "on"
	}
	fmt.Fprintf(a.out, "%s (%s) push notifications %s\n", firstNonEmpty(u.Name, u.Phone, u.ID), u.Role, push)
	return nil
}

func templateField(id string, title bool) string {
	t, ok := campaign.TemplateByID(id)
	if !ok {
		return ""
	}
	if title {
		return t.Title
	}
	return t.Message
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// describe turns an error into the line shown to the user.
func describe(err error) string {
	var (
		cerr *appErrors.CreationError
		serr *appErrors.SendError
		verr *appErrors.ValidationError
		aerr *appErrors.APIError
	)
	switch {
	case errors.As(err, &cerr):
		return cerr.UserMessage()
	case errors.As(err, &serr):
		return serr.UserMessage()
	case errors.As(err, &verr):
		return verr.Message
	case errors.As(err, &aerr) && aerr.Detail != "":
		return aerr.Detail
	}
	return err.Error()
}
