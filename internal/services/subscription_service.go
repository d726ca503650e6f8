// internal/services/subscription_service.go
package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/customer"
	"github.com/stripe/stripe-go/v74/invoice"
	"github.com/stripe/stripe-go/v74/paymentintent"
	"github.com/stripe/stripe-go/v74/webhook"
	"gorm.io/gorm"

	"github.com/bluedwarf/platform/internal/config"
	"github.com/bluedwarf/platform/internal/models"
)

// Billing period length. Successful renewal events extend the window by
// this much.
const subscriptionPeriod = 30 * 24 * time.Hour

type SubscriptionService struct {
	db  *gorm.DB
	cfg *config.Config
}

type TierCatalog struct {
	Tiers    map[string]config.TierConfig `json:"tiers"`
	Currency string                       `json:"currency"`
}

type PaymentIntentResponse struct {
	ClientSecret    string `json:"client_secret"`
	PaymentIntentID string `json:"payment_intent_id"`
	Amount          int64  `json:"amount"`
	Tier            string `json:"tier"`
}

type UpgradeResponse struct {
	ClientSecret    string       `json:"client_secret"`
	PaymentIntentID string       `json:"payment_intent_id"`
	ProratedAmount  int64        `json:"prorated_amount"`
	NewTier         string       `json:"new_tier"`
	UpgradeDetails  models.JSONB `json:"upgrade_details"`
}

type CancellationResponse struct {
	Message          string `json:"message"`
	CancellationType string `json:"cancellation_type"`
	AccessUntil      string `json:"access_until"`
}

type BillingHistoryEntry struct {
	ID          string  `json:"id"`
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency"`
	Status      string  `json:"status"`
	Date        string  `json:"date"`
	Description string  `json:"description"`
	InvoiceURL  string  `json:"invoice_url"`
}

func NewSubscriptionService(db *gorm.DB, cfg *config.Config) *SubscriptionService {
	// Initialize Stripe
	stripe.Key = cfg.Payment.StripeSecretKey

	return &SubscriptionService{
		db:  db,
		cfg: cfg,
	}
}

func (s *SubscriptionService) Tiers() TierCatalog {
	return TierCatalog{
		Tiers:    s.cfg.Tiers,
		Currency: "USD",
	}
}

// Activate turns the subscription on for a fully verified agent once the
// payment collaborator has vouched for the charge.
func (s *SubscriptionService) Activate(agentID uuid.UUID, paymentVerified bool) (*models.Agent, error) {
	agent, err := s.fetchAgent(agentID)
	if err != nil {
		return nil, err
	}

	if !agent.FullyVerified() {
		return nil, fmt.Errorf("%w: agent must complete license and identity verification first", ErrInvalidInput)
	}

	if !paymentVerified {
		return nil, fmt.Errorf("%w: payment verification failed", ErrInvalidInput)
	}

	now := time.Now().UTC()
	end := now.Add(subscriptionPeriod)
	agent.SubscriptionActive = true
	agent.SubscriptionStart = &now
	agent.SubscriptionEnd = &end
	agent.CancelAtPeriodEnd = false

	if err := s.db.Save(agent).Error; err != nil {
		return nil, fmt.Errorf("failed to update agent: %w", err)
	}

	return agent, nil
}

func (s *SubscriptionService) CreatePaymentIntent(agentID uuid.UUID, tierKey string) (*PaymentIntentResponse, error) {
	tier, ok := s.cfg.Tier(tierKey)
	if !ok {
		return nil, fmt.Errorf("%w: invalid subscription tier %q", ErrInvalidInput, tierKey)
	}

	agent, err := s.fetchAgent(agentID)
	if err != nil {
		return nil, err
	}

	if !agent.FullyVerified() {
		return nil, fmt.Errorf("%w: agent must complete verification before subscribing", ErrInvalidInput)
	}

	if agent.StripeCustomerID == "" {
		custParams := &stripe.CustomerParams{
			Email: stripe.String(agent.Email),
			Name:  stripe.String(agent.Name),
		}
		custParams.AddMetadata("agent_id", agent.ID.String())
		custParams.AddMetadata("license_number", agent.LicenseNumber)
		custParams.AddMetadata("license_state", agent.LicenseState)

		cust, err := customer.New(custParams)
		if err != nil {
			return nil, fmt.Errorf("failed to create billing customer: %w", err)
		}
		agent.StripeCustomerID = cust.ID
		if err := s.db.Save(agent).Error; err != nil {
			return nil, fmt.Errorf("failed to update agent: %w", err)
		}
	}

	amount := tier.Price * 100 // cents

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amount),
		Currency: stripe.String("usd"),
		Customer: stripe.String(agent.StripeCustomerID),
	}
	params.AddMetadata("agent_id", agent.ID.String())
	params.AddMetadata("subscription_tier", tierKey)
	params.AddMetadata("type", "subscription")

	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	return &PaymentIntentResponse{
		ClientSecret:    pi.ClientSecret,
		PaymentIntentID: pi.ID,
		Amount:          amount,
		Tier:            tierKey,
	}, nil
}

func (s *SubscriptionService) ConfirmPayment(paymentIntentID string, agentID uuid.UUID) (*models.Agent, models.JSONB, error) {
	if paymentIntentID == "" {
		return nil, nil, fmt.Errorf("%w: payment_intent_id is required", ErrInvalidInput)
	}

	pi, err := paymentintent.Get(paymentIntentID, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to retrieve payment intent: %w", err)
	}

	if pi.Status != stripe.PaymentIntentStatusSucceeded {
		return nil, nil, fmt.Errorf("%w: payment not completed", ErrInvalidInput)
	}

	agent, err := s.fetchAgent(agentID)
	if err != nil {
		return nil, nil, err
	}

	tierKey := pi.Metadata["subscription_tier"]
	if tierKey == "" {
		tierKey = string(models.TierBasic)
	}
	tier, ok := s.cfg.Tier(tierKey)
	if !ok {
		return nil, nil, fmt.Errorf("%w: invalid subscription tier %q", ErrInvalidInput, tierKey)
	}

	now := time.Now().UTC()
	end := now.Add(subscriptionPeriod)
	agent.SubscriptionTier = models.SubscriptionTier(tierKey)
	agent.SubscriptionActive = true
	agent.SubscriptionStart = &now
	agent.SubscriptionEnd = &end
	agent.MonthlyFee = float64(tier.Price)
	agent.CancelAtPeriodEnd = false

	if err := s.db.Save(agent).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to update agent: %w", err)
	}

	details := models.JSONB{
		"tier":              tierKey,
		"features":          tier.Features,
		"next_billing_date": end.Format(time.RFC3339),
	}

	return agent, details, nil
}

func (s *SubscriptionService) Upgrade(agentID uuid.UUID, newTierKey string) (*UpgradeResponse, error) {
	newTier, ok := s.cfg.Tier(newTierKey)
	if !ok {
		return nil, fmt.Errorf("%w: invalid subscription tier %q", ErrInvalidInput, newTierKey)
	}

	agent, err := s.fetchAgent(agentID)
	if err != nil {
		return nil, err
	}

	if !agent.SubscriptionActive || agent.SubscriptionEnd == nil {
		return nil, fmt.Errorf("%w: no active subscription found", ErrInvalidInput)
	}

	currentTier, ok := s.cfg.Tier(string(agent.SubscriptionTier))
	if !ok {
		return nil, fmt.Errorf("unknown current tier %q", agent.SubscriptionTier)
	}

	if newTier.Price <= currentTier.Price {
		return nil, fmt.Errorf("%w: can only upgrade to a higher tier", ErrInvalidInput)
	}

	daysRemaining := int(time.Until(*agent.SubscriptionEnd).Hours() / 24)
	if daysRemaining < 0 {
		daysRemaining = 0
	}
	proratedCents := ProratedUpgradeCents(currentTier.Price, newTier.Price, daysRemaining)

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(proratedCents),
		Currency: stripe.String("usd"),
		Customer: stripe.String(agent.StripeCustomerID),
	}
	params.AddMetadata("agent_id", agent.ID.String())
	params.AddMetadata("subscription_tier", newTierKey)
	params.AddMetadata("type", "upgrade")
	params.AddMetadata("previous_tier", string(agent.SubscriptionTier))

	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	return &UpgradeResponse{
		ClientSecret:    pi.ClientSecret,
		PaymentIntentID: pi.ID,
		ProratedAmount:  proratedCents,
		NewTier:         newTierKey,
		UpgradeDetails: models.JSONB{
			"current_tier":     agent.SubscriptionTier,
			"new_tier":         newTierKey,
			"price_difference": newTier.Price - currentTier.Price,
			"days_remaining":   daysRemaining,
		},
	}, nil
}

// ProratedUpgradeCents charges the price difference for the remainder of
// the 30-day period, in cents.
func ProratedUpgradeCents(oldPrice, newPrice int64, daysRemaining int) int64 {
	return int64(float64(newPrice-oldPrice) * float64(daysRemaining) / 30 * 100)
}

// Cancel closes the subscription. Immediate cancellation ends the window
// now; deferred cancellation flags the agent so renewal events stop
// extending the window and access lapses at the paid-through date.
func (s *SubscriptionService) Cancel(agentID uuid.UUID, immediate bool) (*CancellationResponse, error) {
	agent, err := s.fetchAgent(agentID)
	if err != nil {
		return nil, err
	}

	if !agent.SubscriptionActive {
		return nil, fmt.Errorf("%w: no active subscription found", ErrInvalidInput)
	}

	cancellationType := "end_of_period"
	if immediate {
		now := time.Now().UTC()
		agent.SubscriptionActive = false
		agent.SubscriptionEnd = &now
		cancellationType = "immediate"
	} else {
		agent.CancelAtPeriodEnd = true
	}

	if err := s.db.Save(agent).Error; err != nil {
		return nil, fmt.Errorf("failed to update agent: %w", err)
	}

	accessUntil := ""
	if agent.SubscriptionEnd != nil {
		accessUntil = agent.SubscriptionEnd.Format(time.RFC3339)
	}

	return &CancellationResponse{
		Message:          "Subscription cancelled successfully",
		CancellationType: cancellationType,
		AccessUntil:      accessUntil,
	}, nil
}

func (s *SubscriptionService) BillingHistory(agentID uuid.UUID) (*models.Agent, []BillingHistoryEntry, error) {
	agent, err := s.fetchAgent(agentID)
	if err != nil {
		return nil, nil, err
	}

	if agent.StripeCustomerID == "" {
		return agent, []BillingHistoryEntry{}, nil
	}

	params := &stripe.InvoiceListParams{
		Customer: stripe.String(agent.StripeCustomerID),
	}
	params.Limit = stripe.Int64(12)

	history := []BillingHistoryEntry{}
	iter := invoice.List(params)
	for iter.Next() {
		inv := iter.Invoice()
		description := inv.Description
		if description == "" {
			description = fmt.Sprintf("Subscription - %s", agent.SubscriptionTier)
		}
		history = append(history, BillingHistoryEntry{
			ID:          inv.ID,
			Amount:      float64(inv.AmountPaid) / 100,
			Currency:    string(inv.Currency),
			Status:      string(inv.Status),
			Date:        time.Unix(inv.Created, 0).UTC().Format(time.RFC3339),
			Description: description,
			InvoiceURL:  inv.HostedInvoiceURL,
		})
	}
	if err := iter.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to list invoices: %w", err)
	}

	return agent, history, nil
}

// HandleWebhook consumes payment-event notifications. Signatures are
// verified whenever a signing secret is configured; production config
// requires one.
func (s *SubscriptionService) HandleWebhook(payload []byte, signatureHeader string) error {
	var event stripe.Event

	if s.cfg.Payment.StripeWebhookSecret != "" {
		verified, err := webhook.ConstructEvent(payload, signatureHeader, s.cfg.Payment.StripeWebhookSecret)
		if err != nil {
			return fmt.Errorf("%w: webhook signature verification failed", ErrInvalidInput)
		}
		event = verified
	} else {
		logrus.Warn("Processing webhook without signature verification; no signing secret configured")
		if err := json.Unmarshal(payload, &event); err != nil {
			return fmt.Errorf("%w: malformed webhook payload", ErrInvalidInput)
		}
	}

	switch event.Type {
	case "invoice.payment_succeeded", "invoice.payment_failed":
		var inv struct {
			Customer string `json:"customer"`
		}
		if err := json.Unmarshal(event.Data.Raw, &inv); err != nil {
			return fmt.Errorf("%w: malformed invoice payload", ErrInvalidInput)
		}
		return s.applyInvoiceEvent(event.Type, inv.Customer)
	default:
		logrus.WithField("type", event.Type).Debug("Ignoring webhook event")
	}

	return nil
}

func (s *SubscriptionService) applyInvoiceEvent(eventType string, customerID string) error {
	var agent models.Agent
	if err := s.db.Where("stripe_customer_id = ?", customerID).First(&agent).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logrus.WithField("customer_id", customerID).Warn("Webhook for unknown billing customer")
			return nil
		}
		return fmt.Errorf("failed to fetch agent: %w", err)
	}

	switch eventType {
	case "invoice.payment_succeeded":
		if agent.CancelAtPeriodEnd {
			logrus.WithField("agent_id", agent.ID).Info("Renewal suppressed; subscription cancels at period end")
			return nil
		}
		end := time.Now().UTC().Add(subscriptionPeriod)
		agent.SubscriptionEnd = &end
		agent.SubscriptionActive = true

	case "invoice.payment_failed":
		logrus.WithField("agent_id", agent.ID).Warn("Subscription payment failed")
		if agent.SubscriptionEnd != nil && agent.SubscriptionEnd.Before(time.Now().UTC()) {
			agent.SubscriptionActive = false
		}
	}

	if err := s.db.Save(&agent).Error; err != nil {
		return fmt.Errorf("failed to update agent: %w", err)
	}
	return nil
}

func (s *SubscriptionService) fetchAgent(id uuid.UUID) (*models.Agent, error) {
	var agent models.Agent
	if err := s.db.First(&agent, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: agent %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to fetch agent: %w", err)
	}
	return &agent, nil
}
