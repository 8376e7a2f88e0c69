package billing

import (
	"context"
	"fmt"

	"github.com/asaskevich/EventBus"
	"github.com/openretail/poscore/internal/catalog"
	"github.com/openretail/poscore/internal/ledger"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ReceiptSink is the opaque printing capability. Implementations may fail
// when no physical device is attached; the committer never treats that as
// a commit failure.
type ReceiptSink interface {
	Print(text string, total float64) error
}

// Options control edge behavior of the commit protocol.
type Options struct {
	// AllowEmptyCommit permits committing a session with zero lines.
	AllowEmptyCommit bool
	// StrictResolve fails the whole commit when any line name has no
	// catalog match, instead of silently dropping the line.
	StrictResolve bool
}

// Committer converts sessions into durable bills. It is the only component
// that translates in-memory lines into ledger rows, and all ledger writes
// of one commit run inside a single transaction.
type Committer struct {
	db       *gorm.DB
	sessions *Manager
	catalog  catalog.Repository
	bills    ledger.Repository
	renderer *ReceiptRenderer
	sink     ReceiptSink
	bus      EventBus.Bus
	opts     Options
}

func NewCommitter(
	db *gorm.DB,
	sessions *Manager,
	catalogRepo catalog.Repository,
	billRepo ledger.Repository,
	renderer *ReceiptRenderer,
	sink ReceiptSink,
	bus EventBus.Bus,
	opts Options,
) *Committer {
	return &Committer{
		db:       db,
		sessions: sessions,
		catalog:  catalogRepo,
		bills:    billRepo,
		renderer: renderer,
		sink:     sink,
		bus:      bus,
		opts:     opts,
	}
}

type resolvedLine struct {
	productID int64
	qty       float64
	price     float64
}

// CommitSession persists the session as a bill and returns the bill id.
// When the session is bound to an existing bill, that bill's items are
// replaced in place and its id reused. On any store failure the session is
// left uncommitted so the cashier can retry.
func (c *Committer) CommitSession(ctx context.Context, label string) (int64, error) {
	lines, err := c.sessions.Lines(label)
	if err != nil {
		return 0, err
	}
	total, err := c.sessions.Total(label)
	if err != nil {
		return 0, err
	}
	if len(lines) == 0 && !c.opts.AllowEmptyCommit {
		return 0, ErrEmptySession
	}

	resolved := make([]resolvedLine, 0, len(lines))
	for _, line := range lines {
		p, err := c.catalog.FindByName(ctx, line.Name)
		if err != nil {
			return 0, fmt.Errorf("%w: resolve %q: %v", ErrPersistence, line.Name, err)
		}
		if p == nil {
			if c.opts.StrictResolve {
				return 0, errors.Wrapf(ErrUnknownItem, "%q", line.Name)
			}
			// Billing lines are free text: an unresolved name drops out of
			// persistence, so the stored total may fall short of the
			// session total the cashier saw.
			zap.L().Warn("skipping unresolved line at commit",
				zap.String("customer", label),
				zap.String("item", line.Name),
			)
			continue
		}
		resolved = append(resolved, resolvedLine{
			productID: p.ID,
			qty:       line.Quantity,
			price:     line.Price,
		})
	}

	editingID, editing := c.sessions.EditingBill(label)

	var billID int64
	err = c.db.Transaction(func(tx *gorm.DB) error {
		repo := c.bills.WithTx(tx)
		if editing {
			bill, err := repo.GetBill(ctx, editingID)
			if err != nil {
				return err
			}
			if bill == nil {
				return ErrBillNotFound
			}
			if err := repo.DeleteBillItems(ctx, editingID); err != nil {
				return err
			}
			if err := repo.ResetBillTotal(ctx, editingID); err != nil {
				return err
			}
			billID = editingID
		} else {
			id, err := repo.CreateBill(ctx, label)
			if err != nil {
				return err
			}
			billID = id
		}
		for _, rl := range resolved {
			if _, err := repo.InsertBillItem(ctx, billID, rl.productID, rl.qty, rl.price); err != nil {
				return err
			}
			if err := repo.IncrementBillTotal(ctx, billID, rl.qty*rl.price); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrBillNotFound) {
			return 0, err
		}
		return 0, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	if err := c.sessions.Clear(label); err != nil {
		return billID, err
	}

	receipt := c.renderer.NewReceipt(label, lines, total)
	if err := c.sink.Print(c.renderer.Render(receipt), total); err != nil {
		zap.L().Warn("receipt print failed",
			zap.Int64("bill_id", billID),
			zap.Error(err),
		)
	}

	c.bus.Publish(TopicLedgerChanged, billID)

	zap.L().Info("session committed",
		zap.String("customer", label),
		zap.Int64("bill_id", billID),
		zap.Float64("total", total),
		zap.Bool("edited", editing),
	)
	return billID, nil
}

// LoadBillIntoSession replaces the session's lines with a stored bill's
// items and binds the session to that bill id, so the next commit replaces
// the bill in place. Items whose product was deleted since billing are
// skipped. Lines get the product's current name and price with the stored
// quantity.
func (c *Committer) LoadBillIntoSession(ctx context.Context, label string, billID int64) error {
	bill, err := c.bills.GetBill(ctx, billID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if bill == nil {
		return errors.Wrapf(ErrBillNotFound, "bill %d", billID)
	}

	if err := c.sessions.Clear(label); err != nil {
		return err
	}
	for _, item := range bill.Items {
		p, err := c.catalog.FindByID(ctx, item.ProductID)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrPersistence, err)
		}
		if p == nil {
			zap.L().Warn("skipping bill item with deleted product",
				zap.Int64("bill_id", billID),
				zap.Int64("product_id", item.ProductID),
			)
			continue
		}
		if _, err := c.sessions.AddItem(label, p.Name, item.Quantity, p.Price); err != nil {
			return err
		}
	}
	return c.sessions.BindEditingBill(label, billID)
}

// CancelEditing clears the session and its editing-bill binding without
// touching the ledger.
func (c *Committer) CancelEditing(label string) error {
	return c.sessions.Clear(label)
}

// ScanBarcode resolves a scanned code and appends the product to the
// session as a single unit at catalog price.
func (c *Committer) ScanBarcode(ctx context.Context, label, code string) error {
	p, err := c.catalog.FindByBarcode(ctx, code)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if p == nil {
		return errors.Wrapf(ErrUnknownItem, "barcode %q", code)
	}
	_, err = c.sessions.AddItem(label, p.Name, 1, p.Price)
	return err
}
