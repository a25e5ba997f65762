package report

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/wneessen/go-mail"

	"github.com/couchcryptid/weatherwatch/internal/domain"
	"github.com/couchcryptid/weatherwatch/internal/observability"
)

// WeatherReader is the read surface the scheduler needs from the
// persistent store.
type WeatherReader interface {
	LocationInfo(ctx context.Context, locationID string) (domain.Location, error)
	FutureWeather(ctx context.Context, locationID string, ref time.Time, hours int) ([]domain.HourlyReading, error)
	FutureConditions(ctx context.Context, locationID string, ref time.Time, days int) ([]domain.DailyCondition, error)
	FutureWarnings(ctx context.Context, locationID string, ref time.Time) ([]domain.Warning, error)
}

// Mailer delivers one rendered report.
type Mailer interface {
	Send(ctx context.Context, subject, htmlBody string) error
}

// SMTPMailer delivers reports over SMTP.
type SMTPMailer struct {
	host       string
	port       int
	username   string
	password   string
	from       string
	recipients []string
}

func NewSMTPMailer(host string, port int, username, password, from string, recipients []string) *SMTPMailer {
	return &SMTPMailer{
		host:       host,
		port:       port,
		username:   username,
		password:   password,
		from:       from,
		recipients: recipients,
	}
}

func (m *SMTPMailer) Send(ctx context.Context, subject, htmlBody string) error {
	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return fmt.Errorf("set sender: %w", err)
	}
	if err := msg.To(m.recipients...); err != nil {
		return fmt.Errorf("set recipients: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, htmlBody)

	opts := []mail.Option{mail.WithPort(m.port)}
	if m.username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.username),
			mail.WithPassword(m.password))
	}
	client, err := mail.NewClient(m.host, opts...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	return client.DialAndSendWithContext(ctx, msg)
}

// Scheduler sends one report per configured clock time per day. Times are
// matched against the host's local clock, the same clock the ingested wall
// times are meant to be read against.
type Scheduler struct {
	reader     WeatherReader
	mailer     Mailer
	locationID string
	times      []string // "HH:MM", host-local
	hours      int
	days       int
	clock      clockwork.Clock
	logger     *slog.Logger
	metrics    *observability.Metrics

	lastSent map[string]string // "HH:MM" -> "2006-01-02" it last fired
}

func NewScheduler(reader WeatherReader, mailer Mailer, locationID string, times []string,
	hours, days int, clock clockwork.Clock, logger *slog.Logger,
	metrics *observability.Metrics) *Scheduler {
	return &Scheduler{
		reader:     reader,
		mailer:     mailer,
		locationID: locationID,
		times:      times,
		hours:      hours,
		days:       days,
		clock:      clock,
		logger:     logger,
		metrics:    metrics,
		lastSent:   map[string]string{},
	}
}

// Run checks the schedule once a minute until the context is cancelled or
// a delivery fails. A failed delivery is fatal so the supervisor restarts
// from a clean slate rather than silently dropping reports.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("report scheduler started",
		"location", s.locationID, "times", s.times)

	ticker := s.clock.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		if err := s.tick(ctx); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			s.logger.Info("report scheduler stopping", "reason", ctx.Err())
			return nil
		case <-ticker.Chan():
		}
	}
}

// tick sends a report when the current minute matches a scheduled time that
// has not fired yet today.
func (s *Scheduler) tick(ctx context.Context) error {
	now := s.clock.Now()
	clockNow := now.Format("15:04")
	today := now.Format("2006-01-02")

	for _, at := range s.times {
		if clockNow != at || s.lastSent[at] == today {
			continue
		}
		if err := s.send(ctx, now); err != nil {
			return fmt.Errorf("report at %s: %w", at, err)
		}
		s.lastSent[at] = today
	}
	return nil
}

func (s *Scheduler) send(ctx context.Context, now time.Time) error {
	ref := now.UTC()

	loc, err := s.reader.LocationInfo(ctx, s.locationID)
	if err != nil {
		return err
	}
	hourly, err := s.reader.FutureWeather(ctx, s.locationID, ref, s.hours)
	if err != nil {
		return err
	}
	daily, err := s.reader.FutureConditions(ctx, s.locationID, ref, s.days)
	if err != nil {
		return err
	}
	warnings, err := s.reader.FutureWarnings(ctx, s.locationID, ref)
	if err != nil {
		return err
	}

	summary := Summary{
		Location:    loc,
		GeneratedAt: ref,
		Hourly:      hourly,
		Daily:       daily,
		Warnings:    warnings,
	}
	body, err := Render(summary)
	if err != nil {
		return err
	}
	if err := s.mailer.Send(ctx, summary.Subject(), body); err != nil {
		return fmt.Errorf("send report: %w", err)
	}

	s.metrics.ReportsSent.Inc()
	s.logger.Info("report sent", "location", s.locationID,
		"hourly", len(hourly), "daily", len(daily), "warnings", len(warnings))
	return nil
}
