// Package alerts notifies the care team about urgent triage results by SES email and an
// SNS topic.
package alerts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"doctor-ranking/internal/common/logger"
	"doctor-ranking/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	sestypes "github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	snstypes "github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/google/uuid"
)

var ErrSendFailed = errors.New("ALERT_SEND_FAILED")

const (
	ChannelEmail = "email"
	ChannelSNS   = "sns"

	StatusSent     = "sent"
	StatusFailed   = "failed"
	StatusDisabled = "disabled"

	NotificationType = "urgent_triage"

	maxListed = 3
)

type EmailSender interface {
	SendEmail(ctx context.Context, input *ses.SendEmailInput) (*ses.SendEmailOutput, error)
}

type Publisher interface {
	Publish(ctx context.Context, input *sns.PublishInput) (*sns.PublishOutput, error)
}

type Config struct {
	EmailEnabled bool
	FromEmail    string
	CareTeam     []string
	SNSEnabled   bool
	TopicARN     string
}

// Alert is the content of one urgent-care notice.
type Alert struct {
	RequestID  string         `json:"requestId"`
	UserID     string         `json:"userId,omitempty"`
	Location   string         `json:"location,omitempty"`
	Urgency    models.Urgency `json:"urgency"`
	Specialist string         `json:"specialist"`
	Conditions []string       `json:"conditions"`
	Doctors    []string       `json:"doctors"`
	Advice     []string       `json:"advice"`
}

type Service struct {
	cfg    Config
	email  EmailSender
	topic  Publisher
	logger logger.Logger
	newID  func() string
	now    func() time.Time
}

// NewService builds the alert sender. A channel whose client is nil is treated as disabled.
func NewService(cfg Config, email EmailSender, topic Publisher, log logger.Logger) *Service {
	return &Service{
		cfg:    cfg,
		email:  email,
		topic:  topic,
		logger: log.WithFields(map[string]interface{}{"component": "alerts"}),
		newID:  uuid.NewString,
		now:    time.Now,
	}
}

// BuildAlert summarizes a ranking response.
func BuildAlert(req models.RankingRequest, resp *models.RankingResponse) Alert {
	a := Alert{
		RequestID:  resp.RequestID,
		UserID:     req.UserID,
		Location:   req.Location,
		Urgency:    resp.SpecialistRecommendations.UrgencyLevel,
		Specialist: resp.PredictedSpecialist,
		Conditions: []string{},
		Doctors:    []string{},
		Advice:     resp.SpecialistRecommendations.OverallAdvice,
	}
	if recs := resp.SpecialistRecommendations.Recommendations; len(recs) > 0 {
		a.Specialist = recs[0].Specialist
	}
	for i, d := range resp.Diagnoses {
		if i == maxListed {
			break
		}
		a.Conditions = append(a.Conditions, fmt.Sprintf("%s (%s)", d.Disease, d.Probability.Percent()))
	}
	for i, d := range resp.RecommendedDoctors {
		if i == maxListed {
			break
		}
		a.Doctors = append(a.Doctors, fmt.Sprintf("%s, %s, %s", d.Name, d.Specialty, d.Location))
	}
	return a
}

// NotifyUrgent sends an alert for resp when its urgency is urgent.
func (s *Service) NotifyUrgent(ctx context.Context, req models.RankingRequest, resp *models.RankingResponse) error {
	if resp == nil || resp.SpecialistRecommendations.UrgencyLevel != models.UrgencyUrgent {
		return nil
	}
	_, err := s.Send(ctx, BuildAlert(req, resp))
	return err
}

// Send delivers the alert on every enabled channel. It fails only when every enabled
// channel failed.
func (s *Service) Send(ctx context.Context, alert Alert) ([]models.Notification, error) {
	subject, body := Render(alert)
	notifications := []models.Notification{
		s.deliver(ctx, alert, ChannelEmail, s.cfg.EmailEnabled && s.email != nil, func() error {
			return s.sendEmail(ctx, subject, body)
		}),
		s.deliver(ctx, alert, ChannelSNS, s.cfg.SNSEnabled && s.topic != nil, func() error {
			return s.publish(ctx, alert, subject, body)
		}),
	}

	var attempted, failed int
	var errs []string
	for _, n := range notifications {
		switch n.Status {
		case StatusSent:
			attempted++
		case StatusFailed:
			attempted++
			failed++
			errs = append(errs, fmt.Sprintf("%s: %v", n.Channel, n.Payload["error"]))
		}
	}
	if attempted > 0 && attempted == failed {
		return notifications, fmt.Errorf("%w: %s", ErrSendFailed, strings.Join(errs, "; "))
	}
	return notifications, nil
}

func (s *Service) deliver(ctx context.Context, alert Alert, channel string, enabled bool, send func() error) models.Notification {
	n := models.Notification{
		ID:        s.newID(),
		RequestID: alert.RequestID,
		UserID:    alert.UserID,
		Type:      NotificationType,
		Channel:   channel,
		Status:    StatusDisabled,
		Payload:   map[string]interface{}{"specialist": alert.Specialist, "urgency": string(alert.Urgency)},
	}
	if !enabled {
		return n
	}
	if err := send(); err != nil {
		s.logger.Error("alert delivery failed", map[string]interface{}{
			"channel":   channel,
			"requestId": alert.RequestID,
			"error":     err.Error(),
		})
		n.Status = StatusFailed
		n.Payload["error"] = err.Error()
		return n
	}
	n.Status = StatusSent
	n.SentAt = s.now().UTC().Format(time.RFC3339)
	s.logger.Info("alert delivered", map[string]interface{}{"channel": channel, "requestId": alert.RequestID})
	return n
}

func (s *Service) sendEmail(ctx context.Context, subject, body string) error {
	if len(s.cfg.CareTeam) == 0 {
		return errors.New("no care team recipients configured")
	}
	_, err := s.email.SendEmail(ctx, &ses.SendEmailInput{
		Source:      aws.String(s.cfg.FromEmail),
		Destination: &sestypes.Destination{ToAddresses: s.cfg.CareTeam},
		Message: &sestypes.Message{
			Subject: &sestypes.Content{Data: aws.String(subject), Charset: aws.String("UTF-8")},
			Body: &sestypes.Body{
				Text: &sestypes.Content{Data: aws.String(body), Charset: aws.String("UTF-8")},
			},
		},
	})
	return err
}

func (s *Service) publish(ctx context.Context, alert Alert, subject, body string) error {
	_, err := s.topic.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(s.cfg.TopicARN),
		Subject:  aws.String(subject),
		Message:  aws.String(body),
		MessageAttributes: map[string]snstypes.MessageAttributeValue{
			"urgency": {DataType: aws.String("String"), StringValue: aws.String(string(alert.Urgency))},
		},
	})
	return err
}

// Render produces the subject and plain-text body shared by both channels.
func Render(a Alert) (string, string) {
	specialist := a.Specialist
	if specialist == "" {
		specialist = "Emergency Medicine"
	}
	subject := fmt.Sprintf("Urgent triage: %s consultation recommended", specialist)

	var b strings.Builder
	fmt.Fprintf(&b, "Request: %s\n", a.RequestID)
	if a.UserID != "" {
		fmt.Fprintf(&b, "Patient: %s\n", a.UserID)
	}
	if a.Location != "" {
		fmt.Fprintf(&b, "Location: %s\n", a.Location)
	}
	fmt.Fprintf(&b, "Urgency: %s\n", a.Urgency)
	fmt.Fprintf(&b, "Specialist: %s\n", specialist)
	writeList(&b, "Possible conditions", a.Conditions)
	writeList(&b, "Suggested doctors", a.Doctors)
	writeList(&b, "Advice", a.Advice)
	return subject, b.String()
}

func writeList(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "\n%s:\n", title)
	for _, item := range items {
		fmt.Fprintf(b, "- %s\n", item)
	}
}
