package persistence

import (
	"github.com/chiclet/backend/internal/domain/address"
	"github.com/chiclet/backend/internal/domain/cart"
	"github.com/chiclet/backend/internal/domain/catalog"
	"github.com/chiclet/backend/internal/domain/identity"
	"github.com/chiclet/backend/internal/domain/order"
	"github.com/chiclet/backend/internal/domain/payment"
	"gorm.io/gorm"
)

// Models lists every persisted type in dependency order
func Models() []any {
	return []any{
		&identity.User{},
		&catalog.Product{},
		&catalog.ColorVariant{},
		&address.Address{},
		&cart.Item{},
		&order.Order{},
		&order.Item{},
		&order.TimelineEvent{},
		&payment.Payment{},
	}
}

// AutoMigrate creates or updates tables from the gorm models. Production
// schemas come from the SQL migrations; this serves tests and local runs.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}
