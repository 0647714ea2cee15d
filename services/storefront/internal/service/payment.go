package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/pkg/events"
	"github.com/Skotchmaster/storefront/services/storefront/internal/models"
	"github.com/Skotchmaster/storefront/services/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/services/storefront/internal/transport"
)

var (
	cardNumberRe = regexp.MustCompile(`^\d{16}$`)
	cardExpiryRe = regexp.MustCompile(`^(0[1-9]|1[0-2])/\d{2}$`)
	cardCVVRe    = regexp.MustCompile(`^\d{3,4}$`)
	phoneRe      = regexp.MustCompile(`^\+?\d{9,15}$`)
	codeRe       = regexp.MustCompile(`^\d{4}$`)
)

type PaymentService struct {
	Repo    *repo.GormRepo
	Events  events.Publisher
	Metrics *Metrics
	// Sandbox surfaces the MBank confirmation code in the response.
	Sandbox bool

	NewTxID func() (string, error)
	NewCode func() (string, error)
}

func (s *PaymentService) txID() (string, error) {
	if s.NewTxID != nil {
		return s.NewTxID()
	}
	return NewTransactionID()
}

func (s *PaymentService) code() (string, error) {
	if s.NewCode != nil {
		return s.NewCode()
	}
	return NewConfirmationCode()
}

type payment struct {
	method models.PaymentMethod
	req    transport.PayRequest
}

func validatePayment(req transport.PayRequest) (payment, error) {
	req.CardNumber = strings.ReplaceAll(strings.TrimSpace(req.CardNumber), " ", "")
	req.CardName = strings.TrimSpace(req.CardName)
	req.CardExpiry = strings.TrimSpace(req.CardExpiry)
	req.CardCVV = strings.TrimSpace(req.CardCVV)
	req.PhoneNumber = strings.TrimSpace(req.PhoneNumber)
	req.OTP = strings.TrimSpace(req.OTP)

	fe := FieldErrors{}
	method := models.PaymentMethod(req.PaymentMethod)

	switch {
	case req.PaymentMethod == "":
		fe["payment_method"] = "required"
	case !method.Valid():
		fe["payment_method"] = "must be one of Card, Cash, MBank"
	}

	switch method {
	case models.PaymentCard:
		switch {
		case req.CardNumber == "":
			fe["card_number"] = "required"
		case !cardNumberRe.MatchString(req.CardNumber):
			fe["card_number"] = "must be 16 digits"
		}
		if req.CardName == "" {
			fe["card_name"] = "required"
		}
		switch {
		case req.CardExpiry == "":
			fe["card_expiry"] = "required"
		case !cardExpiryRe.MatchString(req.CardExpiry):
			fe["card_expiry"] = "must be MM/YY"
		}
		switch {
		case req.CardCVV == "":
			fe["card_cvv"] = "required"
		case !cardCVVRe.MatchString(req.CardCVV):
			fe["card_cvv"] = "must be 3 or 4 digits"
		}
	case models.PaymentMBank:
		switch {
		case req.PhoneNumber == "":
			fe["phone_number"] = "required"
		case !phoneRe.MatchString(req.PhoneNumber):
			fe["phone_number"] = "invalid phone number"
		}
		if req.OTP != "" && !codeRe.MatchString(req.OTP) {
			fe["otp"] = "must be 4 digits"
		}
	}

	if err := fe.errOrNil(); err != nil {
		return payment{}, err
	}
	return payment{method: method, req: req}, nil
}

// payOutcome is what a single locked attempt decided.
type payOutcome struct {
	outcome string
	message string
	code    string
}

// Pay applies a payment method to an order. Input is validated before the
// order is touched; declines and wrong codes leave the order unchanged.
func (s *PaymentService) Pay(ctx context.Context, userID, orderID uint, req transport.PayRequest) (*transport.PayResponse, error) {
	p, err := validatePayment(req)
	if err != nil {
		label := req.PaymentMethod
		if !models.PaymentMethod(label).Valid() {
			label = "unknown"
		}
		s.Metrics.payment(label, outcomeRejected)
		return nil, err
	}

	var (
		order   *models.Order
		res     payOutcome
		changed bool
	)
	err = retryTxID(func() error {
		var aerr error
		order, res, changed, aerr = s.attempt(ctx, userID, orderID, p)
		return aerr
	})

	method := string(p.method)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, ErrOrderNotFound
	case errors.Is(err, ErrCardDeclined):
		s.Metrics.payment(method, outcomeDeclined)
		return nil, err
	case errors.Is(err, ErrInvalidCode):
		s.Metrics.payment(method, outcomeInvalidCode)
		return nil, err
	case errors.Is(err, ErrValidation):
		s.Metrics.payment(method, outcomeRejected)
		return nil, err
	case err != nil:
		return nil, fmt.Errorf("pay order: %w", err)
	}
	s.Metrics.payment(method, res.outcome)

	if changed {
		s.announce(ctx, order, res)
	}

	out := &transport.PayResponse{
		OrderID:       order.ID,
		Status:        string(order.Status),
		PaymentMethod: string(order.PaymentMethod.OrDefault()),
		TransactionID: order.TransactionID,
		Message:       res.message,
	}
	if s.Sandbox {
		out.ConfirmationCode = res.code
	}
	return out, nil
}

func (s *PaymentService) attempt(ctx context.Context, userID, orderID uint, p payment) (*models.Order, payOutcome, bool, error) {
	var res payOutcome

	order, changed, err := s.Repo.MutateOrder(ctx, userID, orderID, func(o *models.Order) (bool, error) {
		if o.Status == models.StatusPaid {
			res = payOutcome{outcome: outcomeAlreadyPaid, message: "order is already paid"}
			return false, nil
		}

		switch p.method {
		case models.PaymentCard:
			return s.payCard(o, p.req, &res)
		case models.PaymentCash:
			return payCash(o, &res)
		default:
			return s.payMBank(o, p.req, &res)
		}
	})
	return order, res, changed, err
}

func transition(o *models.Order, to models.OrderStatus) error {
	if !o.Status.CanTransition(to) {
		return validation(fmt.Sprintf("order in status %s cannot be paid", o.Status))
	}
	o.Status = to
	return nil
}

// markPaid moves the order to Paid and stamps a fresh transaction id.
func markPaid(o *models.Order, newTxID func() (string, error)) error {
	if err := transition(o, models.StatusPaid); err != nil {
		return err
	}
	id, err := newTxID()
	if err != nil {
		return err
	}
	o.TransactionID = &id
	o.ConfirmationCode = ""
	return nil
}

func (s *PaymentService) payCard(o *models.Order, req transport.PayRequest, res *payOutcome) (bool, error) {
	if !o.Status.CanTransition(models.StatusPaid) {
		return false, validation(fmt.Sprintf("order in status %s cannot be paid", o.Status))
	}
	if req.CardNumber[0] != '4' {
		return false, ErrCardDeclined
	}
	if err := markPaid(o, s.txID); err != nil {
		return false, err
	}
	o.PaymentMethod = models.PaymentCard
	o.CardHolder = req.CardName
	o.CardLast4 = req.CardNumber[len(req.CardNumber)-4:]
	o.CardExpiry = req.CardExpiry

	*res = payOutcome{outcome: outcomePaid, message: "payment accepted"}
	return true, nil
}

func payCash(o *models.Order, res *payOutcome) (bool, error) {
	*res = payOutcome{outcome: outcomeAwaitingPayment, message: "pay in cash on pickup or delivery"}
	if o.Status == models.StatusAwaitingPayment && o.PaymentMethod == models.PaymentCash {
		return false, nil
	}
	if err := transition(o, models.StatusAwaitingPayment); err != nil {
		return false, err
	}
	o.PaymentMethod = models.PaymentCash
	o.ConfirmationCode = ""
	return true, nil
}

func (s *PaymentService) payMBank(o *models.Order, req transport.PayRequest, res *payOutcome) (bool, error) {
	if req.OTP == "" {
		if err := transition(o, models.StatusAwaitingConfirmation); err != nil {
			return false, err
		}
		code, err := s.code()
		if err != nil {
			return false, err
		}
		o.PaymentMethod = models.PaymentMBank
		o.PhoneNumber = req.PhoneNumber
		o.ConfirmationCode = code

		*res = payOutcome{outcome: outcomeAwaitingConfirmation, message: "confirmation code sent", code: code}
		return true, nil
	}

	if o.Status != models.StatusAwaitingConfirmation || o.PaymentMethod != models.PaymentMBank ||
		!codesEqual(o.ConfirmationCode, req.OTP) {
		return false, ErrInvalidCode
	}
	if err := markPaid(o, s.txID); err != nil {
		return false, err
	}
	*res = payOutcome{outcome: outcomePaid, message: "payment confirmed"}
	return true, nil
}

func (s *PaymentService) announce(ctx context.Context, o *models.Order, res payOutcome) {
	key := orderKey(o.ID)
	switch res.outcome {
	case outcomeAwaitingConfirmation:
		publish(ctx, s.Events, events.TopicNotification, key, events.TypePaymentOTPIssued, map[string]any{
			"order_id":     o.ID,
			"user_id":      o.UserID,
			"phone_number": o.PhoneNumber,
			"code":         res.code,
		})
	case outcomePaid:
		publish(ctx, s.Events, events.TopicOrder, key, events.TypeOrderPaid, map[string]any{
			"order_id":       o.ID,
			"user_id":        o.UserID,
			"payment_method": o.PaymentMethod,
			"transaction_id": o.TransactionID,
			"total_price":    money(o.TotalPrice),
		})
	case outcomeAwaitingPayment:
		publish(ctx, s.Events, events.TopicOrder, key, events.TypeOrderStatusChanged, map[string]any{
			"order_id": o.ID,
			"user_id":  o.UserID,
			"to":       o.Status,
		})
	}
}
