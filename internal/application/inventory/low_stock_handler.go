package inventory

import (
	"context"
	"fmt"

	"github.com/branchstock/backend/internal/domain/inventory"
	"github.com/branchstock/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// LowStockAlertHandler handles LowStockAlert events and triggers
// notifications when on-hand stock falls to or below the reorder level
type LowStockAlertHandler struct {
	logger   *zap.Logger
	notifier StockAlertNotifier
}

// StockAlertNotifier is the interface for sending stock alerts.
// Implementations can support different channels (in-app, email, SMS, etc.)
type StockAlertNotifier interface {
	// SendAlert sends a stock alert notification
	SendAlert(ctx context.Context, alert StockAlert) error
}

// StockAlert represents a low stock alert
type StockAlert struct {
	TenantID         string   `json:"tenant_id"`
	StockLevelID     string   `json:"stock_level_id"`
	BranchID         string   `json:"branch_id"`
	ProductVariantID string   `json:"product_variant_id"`
	OnHandQuantity   string   `json:"on_hand_quantity"`
	ReorderLevel     string   `json:"reorder_level"`
	ReorderQuantity  string   `json:"reorder_quantity"`
	AlertType        string   `json:"alert_type"` // "low_stock", "out_of_stock"
	Channels         []string `json:"channels"`   // "in_app", "email", "sms"
}

// NewLowStockAlertHandler creates a new handler for low stock alert events
func NewLowStockAlertHandler(logger *zap.Logger) *LowStockAlertHandler {
	return &LowStockAlertHandler{
		logger: logger,
	}
}

// WithNotifier sets the notifier for sending alerts
func (h *LowStockAlertHandler) WithNotifier(notifier StockAlertNotifier) *LowStockAlertHandler {
	h.notifier = notifier
	return h
}

// EventTypes returns the event types this handler is interested in
func (h *LowStockAlertHandler) EventTypes() []string {
	return []string{inventory.EventTypeLowStockAlert}
}

// Handle processes a LowStockAlertEvent
func (h *LowStockAlertHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	alertEvent, ok := event.(*inventory.LowStockAlertEvent)
	if !ok {
		h.logger.Error("unexpected event type",
			zap.String("expected", inventory.EventTypeLowStockAlert),
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			inventory.EventTypeLowStockAlert, event.EventType())
	}

	h.logger.Warn("low stock detected",
		zap.String("tenant_id", event.TenantID().String()),
		zap.String("stock_level_id", alertEvent.StockLevelID.String()),
		zap.String("branch_id", alertEvent.BranchID.String()),
		zap.String("product_variant_id", alertEvent.ProductVariantID.String()),
		zap.String("on_hand_quantity", alertEvent.OnHandQuantity.String()),
		zap.String("reorder_level", alertEvent.ReorderLevel.String()),
	)

	alertType := "low_stock"
	if alertEvent.OnHandQuantity.IsZero() {
		alertType = "out_of_stock"
	}

	alert := StockAlert{
		TenantID:         event.TenantID().String(),
		StockLevelID:     alertEvent.StockLevelID.String(),
		BranchID:         alertEvent.BranchID.String(),
		ProductVariantID: alertEvent.ProductVariantID.String(),
		OnHandQuantity:   alertEvent.OnHandQuantity.String(),
		ReorderLevel:     alertEvent.ReorderLevel.String(),
		ReorderQuantity:  alertEvent.ReorderQuantity.String(),
		AlertType:        alertType,
		Channels:         []string{"in_app"},
	}

	if h.notifier != nil {
		if err := h.notifier.SendAlert(ctx, alert); err != nil {
			h.logger.Error("failed to send stock alert notification",
				zap.String("stock_level_id", alert.StockLevelID),
				zap.Error(err),
			)
			// Don't return error - notification failure shouldn't fail the event handling
		} else {
			h.logger.Info("stock alert notification sent",
				zap.String("stock_level_id", alert.StockLevelID),
				zap.String("alert_type", alertType),
				zap.Strings("channels", alert.Channels),
			)
		}
	}

	return nil
}

// Ensure LowStockAlertHandler implements shared.EventHandler
var _ shared.EventHandler = (*LowStockAlertHandler)(nil)

// LoggingStockAlertNotifier is a simple notifier that logs alerts.
// This is useful for development and testing
type LoggingStockAlertNotifier struct {
	logger *zap.Logger
}

// NewLoggingStockAlertNotifier creates a new logging notifier
func NewLoggingStockAlertNotifier(logger *zap.Logger) *LoggingStockAlertNotifier {
	return &LoggingStockAlertNotifier{
		logger: logger,
	}
}

// SendAlert logs the stock alert
func (n *LoggingStockAlertNotifier) SendAlert(_ context.Context, alert StockAlert) error {
	n.logger.Warn("STOCK ALERT",
		zap.String("type", alert.AlertType),
		zap.String("product_variant_id", alert.ProductVariantID),
		zap.String("branch_id", alert.BranchID),
		zap.String("on_hand_qty", alert.OnHandQuantity),
		zap.String("reorder_level", alert.ReorderLevel),
		zap.Strings("channels", alert.Channels),
	)
	return nil
}

// Ensure LoggingStockAlertNotifier implements StockAlertNotifier
var _ StockAlertNotifier = (*LoggingStockAlertNotifier)(nil)
