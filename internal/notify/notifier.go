package notify

// TextNotifier defines a minimal text notification interface. It is
// intentionally small so components can depend on it without importing a
// concrete sink. Delivery is best-effort: failures must never affect trading
// decisions.
type TextNotifier interface {
	SendText(text string) error
}

// Nop discards every message. Used when alerting is disabled.
type Nop struct{}

func (Nop) SendText(string) error { return nil }
