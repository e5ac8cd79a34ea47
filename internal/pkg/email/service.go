package email

import (
	"bytes"
	"context"
	"html/template"
	"sync"

	"github.com/rs/zerolog/log"
)

// Service handles email sending with templates.
// Sending is asynchronous and strictly best-effort: a failed send is
// logged and dropped, it never reaches the caller.
type Service struct {
	client       *SendGridClient
	templates    map[string]*template.Template
	baseTemplate *template.Template
	queue        chan *QueuedEmail
	wg           sync.WaitGroup
}

// QueuedEmail represents an email in the send queue
type QueuedEmail struct {
	To           string
	ToName       string
	Subject      string
	TemplateName string
	Data         interface{}
}

// NewService creates email service
func NewService(config SendGridConfig) *Service {
	s := &Service{
		client:    NewSendGridClient(config),
		templates: make(map[string]*template.Template),
		queue:     make(chan *QueuedEmail, 100),
	}

	s.baseTemplate, _ = template.New("base").Parse(BaseTemplate)
	s.loadTemplates()

	s.wg.Add(1)
	go s.worker()

	return s
}

// loadTemplates loads all email templates
func (s *Service) loadTemplates() {
	templates := map[string]string{
		"listing_approved":  ListingApprovedTemplate,
		"listing_rejected":  ListingRejectedTemplate,
		"topup_approved":    TopUpApprovedTemplate,
		"topup_rejected":    TopUpRejectedTemplate,
		"purchase_verified": PurchaseVerifiedTemplate,
		"payout_paid":       PayoutPaidTemplate,
		"payout_received":   PayoutReceivedTemplate,
		"welcome":           WelcomeTemplate,
	}

	for name, content := range templates {
		tmpl, err := template.New(name).Parse(content)
		if err != nil {
			log.Error().Err(err).Str("template", name).Msg("Failed to parse email template")
			continue
		}
		s.templates[name] = tmpl
	}
}

// worker processes queued emails asynchronously
func (s *Service) worker() {
	defer s.wg.Done()

	for email := range s.queue {
		ctx := context.Background()
		if err := s.send(ctx, email); err != nil {
			log.Error().Err(err).
				Str("to", email.To).
				Str("template", email.TemplateName).
				Msg("Failed to send email")
		}
	}
}

// send actually sends the email
func (s *Service) send(ctx context.Context, email *QueuedEmail) error {
	tmpl, ok := s.templates[email.TemplateName]
	if !ok {
		log.Warn().Str("template", email.TemplateName).Msg("Template not found")
		return nil
	}

	var contentBuf bytes.Buffer
	if err := tmpl.Execute(&contentBuf, email.Data); err != nil {
		return err
	}

	var htmlBuf bytes.Buffer
	if err := s.baseTemplate.Execute(&htmlBuf, map[string]interface{}{
		"Content": template.HTML(contentBuf.String()),
	}); err != nil {
		return err
	}

	return s.client.Send(ctx, &EmailMessage{
		To:          email.To,
		ToName:      email.ToName,
		Subject:     email.Subject,
		HTMLContent: htmlBuf.String(),
	})
}

// Queue adds an email to the async send queue
func (s *Service) Queue(to, toName, templateName, subject string, data interface{}) {
	select {
	case s.queue <- &QueuedEmail{
		To:           to,
		ToName:       toName,
		Subject:      subject,
		TemplateName: templateName,
		Data:         data,
	}:
	default:
		log.Warn().Str("to", to).Msg("Email queue full, dropping email")
	}
}

// Close stops the email worker
func (s *Service) Close() {
	close(s.queue)
	s.wg.Wait()
}

// --- Convenience methods for specific emails ---

// SendListingApproved notifies the seller their listing is live
func (s *Service) SendListingApproved(to, toName, rankLabel, price, listingURL string) {
	s.Queue(to, toName, "listing_approved", "✅ Tin đăng đã được duyệt", map[string]string{
		"RankLabel":  rankLabel,
		"Price":      price,
		"ListingURL": listingURL,
	})
}

// SendListingRejected notifies the seller their listing was rejected
func (s *Service) SendListingRejected(to, toName, rankLabel, reason string) {
	s.Queue(to, toName, "listing_rejected", "Tin đăng bị từ chối", map[string]string{
		"RankLabel": rankLabel,
		"Reason":    reason,
	})
}

// SendTopUpApproved notifies a user their wallet was credited
func (s *Service) SendTopUpApproved(to, toName, amount, balance string) {
	s.Queue(to, toName, "topup_approved", "💰 Nạp tiền thành công", map[string]string{
		"Amount":  amount,
		"Balance": balance,
	})
}

// SendTopUpRejected notifies a user their top-up was rejected
func (s *Service) SendTopUpRejected(to, toName, amount, reason string) {
	s.Queue(to, toName, "topup_rejected", "Yêu cầu nạp tiền bị từ chối", map[string]string{
		"Amount": amount,
		"Reason": reason,
	})
}

// SendPurchaseVerified confirms the buyer's gateway payment arrived
func (s *Service) SendPurchaseVerified(to, toName, total, rankLabel string) {
	s.Queue(to, toName, "purchase_verified", "🎮 Thanh toán thành công", map[string]string{
		"Total":     total,
		"RankLabel": rankLabel,
	})
}

// SendPayoutPaid notifies a seller their payout was disbursed
func (s *Service) SendPayoutPaid(to, toName, amount string, month, year int, payoutURL string) {
	s.Queue(to, toName, "payout_paid", "💸 Đã thanh toán tiền bán hàng", map[string]interface{}{
		"Amount":    amount,
		"Month":     month,
		"Year":      year,
		"PayoutURL": payoutURL,
	})
}

// SendPayoutReceived notifies the admin a seller confirmed receipt
func (s *Service) SendPayoutReceived(to, toName, sellerEmail, amount string, month, year int) {
	s.Queue(to, toName, "payout_received", "Người bán đã xác nhận nhận tiền", map[string]interface{}{
		"SellerEmail": sellerEmail,
		"Amount":      amount,
		"Month":       month,
		"Year":        year,
	})
}

// SendWelcome sends welcome email to new user
func (s *Service) SendWelcome(to, toName, displayName, marketURL string) {
	s.Queue(to, toName, "welcome", "Chào mừng đến với GameBay!", map[string]string{
		"DisplayName": displayName,
		"MarketURL":   marketURL,
	})
}
