package types

// PaymentType describes one of the accepted payment methods for expenses.
type PaymentType struct {
	Value       string `json:"value"`
	Label       string `json:"label"`
	Icon        string `json:"icon"`
	Description string `json:"description"`
}

const DefaultPaymentType = "cash"

var PaymentTypes = []PaymentType{
	{Value: "cash", Label: "Cash", Icon: "💵", Description: "Physical cash payment"},
	{Value: "debit", Label: "Debit Card", Icon: "💳", Description: "Payment using debit card"},
	{Value: "credit", Label: "Credit Card", Icon: "💳", Description: "Payment using credit card"},
	{Value: "transfer", Label: "Bank Transfer", Icon: "🏦", Description: "Direct bank transfer or wire transfer"},
	{Value: "ewallet", Label: "E-Wallet", Icon: "📱", Description: "Digital wallet (GoPay, OVO, Dana, PayPal, etc.)"},
	{Value: "qris", Label: "QRIS", Icon: "📲", Description: "QR Code Indonesian Standard"},
	{Value: "check", Label: "Check", Icon: "📝", Description: "Payment by check"},
	{Value: "other", Label: "Other", Icon: "💰", Description: "Other payment methods"},
}

func IsValidPaymentType(value string) bool {
	for _, t := range PaymentTypes {
		if t.Value == value {
			return true
		}
	}
	return false
}
