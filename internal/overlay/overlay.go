// Package overlay models the single secondary view a list screen may show:
// a create-user form, an edit-user form, a receipt viewer or a rejection
// prompt. Exactly one overlay is active at a time; opening any overlay
// replaces the previous one.
package overlay

import "sync"

type Kind string

const (
	None         Kind = "none"
	CreateUser   Kind = "create_user"
	EditUser     Kind = "edit_user"
	Receipt      Kind = "receipt"
	RejectPrompt Kind = "reject_prompt"
)

// ReceiptViewState is the receipt viewer's sub-state. An image load failure
// shows a fallback affordance instead of closing the modal.
type ReceiptViewState string

const (
	ReceiptShowing      ReceiptViewState = "showing"
	ReceiptErrorDisplay ReceiptViewState = "error_display"
)

// PaymentInfo is the summary rendered next to the proof image.
type PaymentInfo struct {
	Amount    int64  `json:"amount"`
	Date      string `json:"date"`
	Reference string `json:"reference,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

// ReceiptView is the open receipt viewer.
type ReceiptView struct {
	State    ReceiptViewState `json:"state"`
	ImageURL string           `json:"image_url"`
	Info     PaymentInfo      `json:"info"`
}

// Overlay is the tagged union. Fields beyond Kind are meaningful only for
// the variants that carry them.
type Overlay struct {
	Kind      Kind         `json:"kind"`
	MemberID  string       `json:"member_id,omitempty"`  // EditUser
	PaymentID string       `json:"payment_id,omitempty"` // Receipt, RejectPrompt
	Receipt   *ReceiptView `json:"receipt,omitempty"`    // Receipt
}

// Coordinator holds a view's active overlay.
type Coordinator struct {
	mu     sync.Mutex
	active Overlay
}

func NewCoordinator() *Coordinator {
	return &Coordinator{active: Overlay{Kind: None}}
}

func (c *Coordinator) Active() Overlay {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

func (c *Coordinator) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.active = Overlay{Kind: None}
}

func (c *Coordinator) OpenCreateUser() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.active = Overlay{Kind: CreateUser}
}

func (c *Coordinator) OpenEditUser(memberID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.active = Overlay{Kind: EditUser, MemberID: memberID}
}

func (c *Coordinator) OpenReceipt(paymentID, imageURL string, info PaymentInfo) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.active = Overlay{
		Kind:      Receipt,
		PaymentID: paymentID,
		Receipt: &ReceiptView{
			State:    ReceiptShowing,
			ImageURL: imageURL,
			Info:     info,
		},
	}
}

func (c *Coordinator) OpenRejectPrompt(paymentID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.active = Overlay{Kind: RejectPrompt, PaymentID: paymentID}
}

// MarkReceiptImageError moves an open receipt viewer into its error-display
// sub-state. The modal stays open so the fallback (open the original in a
// new tab) remains reachable. No-op for any other overlay.
func (c *Coordinator) MarkReceiptImageError() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active.Kind != Receipt || c.active.Receipt == nil {
		return false
	}
	c.active.Receipt.State = ReceiptErrorDisplay
	return true
}

// RejectTarget returns the payment captured by an open rejection prompt.
// Confirming a rejection must act on this payment, never on whatever record
// a caller happens to pass.
func (c *Coordinator) RejectTarget() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active.Kind != RejectPrompt {
		return "", false
	}
	return c.active.PaymentID, true
}
