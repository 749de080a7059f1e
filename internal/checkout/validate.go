package checkout

import (
	"context"
	stderrors "errors"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/pkg/errors"
)

// Step names used in validation errors
const (
	StepCustomer = "customer"
	StepShipping = "shipping"
	StepPayment  = "payment"
)

var (
	canadaPostal   = regexp.MustCompile(`^([A-Z]\d[A-Z])[ -]?(\d[A-Z]\d)$`)
	expiryPattern  = regexp.MustCompile(`^(\d{2})\s*/\s*(\d{2})$`)
	cardSeparators = strings.NewReplacer(" ", "", "-", "")
)

// validate is shared by every step
var validate = newValidator()

type nowKey struct{}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterStructValidation(customerRules, domain.CustomerInfo{})
	mustRegister(v.RegisterValidation("shipping_method", func(fl validator.FieldLevel) bool {
		_, ok := LookupShippingOption(fl.Field().String())
		return ok
	}))
	mustRegister(v.RegisterValidationCtx("card_expiry", func(ctx context.Context, fl validator.FieldLevel) bool {
		now, ok := ctx.Value(nowKey{}).(time.Time)
		if !ok {
			now = time.Now()
		}
		return validExpiry(fl.Field().String(), now)
	}))
	return v
}

func mustRegister(err error) {
	if err != nil {
		panic(err)
	}
}

// customerRules holds the country dependent postal and province checks
func customerRules(sl validator.StructLevel) {
	c := sl.Current().Interface().(domain.CustomerInfo)
	code := countryCode(c.Country)

	if c.Postal == "" {
		sl.ReportError(c.Postal, "postal", "Postal", "required", "")
	} else if code != "" {
		if err := sl.Validator().Var(c.Postal, "postcode_iso3166_alpha2="+code); err != nil {
			sl.ReportError(c.Postal, "postal", "Postal", "postcode_iso3166_alpha2", code)
		}
	}
	if code == "CA" && c.Province == "" {
		sl.ReportError(c.Province, "province", "Province", "required", "")
	}
}

// PaymentInput is the raw payment form. Card number and CVV are only
// validated and masked, never stored.
type PaymentInput struct {
	Method         string               `json:"method" validate:"required,oneof=card cod cash cash_on_delivery"`
	CardNumber     string               `json:"cardNumber" validate:"required_if=Method card,omitempty,credit_card"`
	CardName       string               `json:"cardName" validate:"required_if=Method card,omitempty,min=2"`
	Expiry         string               `json:"expiry" validate:"required_if=Method card,omitempty,card_expiry"`
	CVV            string               `json:"cvv" validate:"required_if=Method card,omitempty,number,min=3,max=4"`
	SameAsShipping bool                 `json:"sameAsShipping"`
	Billing        domain.PostalAddress `json:"billing" validate:"-"`
}

// ShippingInput is the raw shipping form
type ShippingInput struct {
	ID          string                `json:"id" validate:"required,shipping_method"`
	Destination *domain.PostalAddress `json:"destination,omitempty" validate:"omitempty"`
}

type fieldErrors map[string]string

// add records every failed field of one validator run, keyed by its json
// path below the validated struct.
func (f fieldErrors) add(err error, prefix string) {
	if err == nil {
		return
	}
	var failed validator.ValidationErrors
	if !stderrors.As(err, &failed) {
		f[prefix+"form"] = err.Error()
		return
	}
	for _, fe := range failed {
		f[prefix+fieldKey(fe.Namespace())] = fieldMessage(fe)
	}
}

func (f fieldErrors) err(step string) error {
	if len(f) == 0 {
		return nil
	}
	return &errors.ErrValidation{Step: step, Fields: f}
}

// fieldKey drops the root type and embedded struct names, neither of which
// has a json name.
func fieldKey(namespace string) string {
	parts := strings.Split(namespace, ".")
	keep := make([]string, 0, len(parts))
	for _, p := range parts[1:] {
		if p != "" && !unicode.IsUpper([]rune(p)[0]) {
			keep = append(keep, p)
		}
	}
	return strings.Join(keep, ".")
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_if":
		return "required"
	case "email":
		return "invalid email"
	case "oneof":
		return "unknown payment method"
	case "shipping_method":
		return "unknown shipping method"
	case "credit_card":
		return "invalid card number"
	case "card_expiry":
		return "expired or not MM/YY"
	case "number", "min", "max":
		if fe.Field() == "cvv" {
			return "expected 3 or 4 digits"
		}
		return "too short"
	case "postcode_iso3166_alpha2":
		if fe.Param() == "CA" {
			return "expected format A1A 1A1"
		}
		return "expected a 5 digit ZIP code"
	default:
		return "invalid"
	}
}

// ValidateCustomer checks the customer form and returns it trimmed, with the
// postal code in canonical form.
func ValidateCustomer(in domain.CustomerInfo) (domain.CustomerInfo, error) {
	c := domain.CustomerInfo{
		Email:         strings.TrimSpace(in.Email),
		FirstName:     strings.TrimSpace(in.FirstName),
		LastName:      strings.TrimSpace(in.LastName),
		Phone:         strings.TrimSpace(in.Phone),
		PostalAddress: trimAddress(in.PostalAddress),
	}
	if countryCode(c.Country) == "CA" {
		c.Postal = canonicalCanadaPostal(c.Postal)
	}

	fields := fieldErrors{}
	fields.add(validate.Struct(c), "")
	return c, fields.err(StepCustomer)
}

// ValidateShipping resolves the selected method against the catalog. The
// optional destination must be complete when given.
func ValidateShipping(in ShippingInput) (domain.ShippingSelection, error) {
	in.ID = strings.TrimSpace(in.ID)
	if in.Destination != nil {
		dest := trimAddress(*in.Destination)
		if isEmptyAddress(dest) {
			in.Destination = nil
		} else {
			in.Destination = &dest
		}
	}

	fields := fieldErrors{}
	fields.add(validate.Struct(in), "")

	option, _ := LookupShippingOption(in.ID)
	selection := domain.ShippingSelection{ID: option.ID, Label: option.Label, Price: option.Price}
	selection.PostalAddress = in.Destination

	return selection, fields.err(StepShipping)
}

// ValidatePayment checks the payment form and returns the masked summary
// without amounts. Billing is left empty when it mirrors shipping.
func ValidatePayment(in PaymentInput, now time.Time) (domain.PaymentSummary, error) {
	in.Method = strings.ToLower(strings.TrimSpace(in.Method))
	method, _ := domain.ParsePaymentMethod(in.Method)

	if method == domain.PaymentMethodCard {
		in.CardNumber = cardSeparators.Replace(strings.TrimSpace(in.CardNumber))
		in.CardName = strings.TrimSpace(in.CardName)
		in.Expiry = strings.TrimSpace(in.Expiry)
		in.CVV = strings.TrimSpace(in.CVV)
	} else {
		in.CardNumber, in.CardName, in.Expiry, in.CVV = "", "", "", ""
	}

	fields := fieldErrors{}
	ctx := context.WithValue(context.Background(), nowKey{}, now)
	fields.add(validate.StructCtx(ctx, in), "")

	summary := domain.PaymentSummary{
		Method:         method,
		SameAsShipping: in.SameAsShipping,
	}
	if method == domain.PaymentMethodCard {
		summary.CardName = in.CardName
		if _, bad := fields["cardNumber"]; !bad {
			summary.CardMask = MaskCard(in.CardNumber)
		}
	}

	if !in.SameAsShipping {
		billing := trimAddress(in.Billing)
		fields.add(validate.Struct(billing), "billing.")
		summary.Billing = billing
	}

	return summary, fields.err(StepPayment)
}

// MaskCard keeps only the last four digits of a card number.
func MaskCard(digits string) string {
	last4 := digits
	if len(digits) > 4 {
		last4 = digits[len(digits)-4:]
	}
	return "•••• •••• •••• " + last4
}

// validExpiry accepts MM/YY; a card is valid through the end of its month.
func validExpiry(raw string, now time.Time) bool {
	m := expiryPattern.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return false
	}
	month, _ := strconv.Atoi(m[1])
	year, _ := strconv.Atoi(m[2])
	if month < 1 || month > 12 {
		return false
	}
	year += 2000
	nowYear, nowMonth := now.Year(), int(now.Month())
	return year > nowYear || (year == nowYear && month >= nowMonth)
}

// canonicalCanadaPostal rewrites a1a1a1 or A1A-1A1 as A1A 1A1. Anything else
// is returned unchanged for the validator to reject.
func canonicalCanadaPostal(raw string) string {
	m := canadaPostal.FindStringSubmatch(strings.ToUpper(raw))
	if m == nil {
		return raw
	}
	return m[1] + " " + m[2]
}

// countryCode maps the country names the forms accept to ISO 3166 alpha-2.
// Countries without postal rules map to "".
func countryCode(country string) string {
	switch strings.ToLower(strings.TrimSpace(country)) {
	case "canada", "ca":
		return "CA"
	case "united states", "united states of america", "us", "usa":
		return "US"
	}
	return ""
}

func trimAddress(a domain.PostalAddress) domain.PostalAddress {
	return domain.PostalAddress{
		Address:  strings.TrimSpace(a.Address),
		Address2: strings.TrimSpace(a.Address2),
		City:     strings.TrimSpace(a.City),
		Province: strings.TrimSpace(a.Province),
		Postal:   strings.TrimSpace(a.Postal),
		Country:  strings.TrimSpace(a.Country),
	}
}

func isEmptyAddress(a domain.PostalAddress) bool {
	return trimAddress(a) == domain.PostalAddress{}
}
