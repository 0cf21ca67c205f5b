package sheetstore

import (
	"context"
	"fmt"

	"github.com/lalith-99/sheetcrm/internal/models"
)

const contactsKey = "contacts"

type ContactStore struct {
	s *Store
}

func NewContactStore(s *Store) *ContactStore {
	return &ContactStore{s: s}
}

func (c *ContactStore) List(ctx context.Context) ([]models.Contact, error) {
	return cachedList(ctx, c.s, contactsKey, contactsTable, contactFromRow)
}

func (c *ContactStore) ListByCompany(ctx context.Context, companyID string) ([]models.Contact, error) {
	all, err := c.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.Contact, 0)
	for _, ct := range all {
		if ct.CompanyID == companyID {
			out = append(out, ct)
		}
	}
	return out, nil
}

func (c *ContactStore) GetByID(ctx context.Context, id string) (*models.Contact, error) {
	all, err := c.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].ID == id {
			return &all[i], nil
		}
	}
	return nil, nil
}

func (c *ContactStore) Create(ctx context.Context, contact models.Contact) (*models.Contact, error) {
	if contact.ID == "" {
		contact.ID = models.NewID(c.s.now())
	}
	if err := c.s.appendRow(ctx, contactsTable, contactToRow(contact, c.s.now())); err != nil {
		return nil, fmt.Errorf("insert contact: %w", err)
	}
	c.s.cache.Delete(contactsKey)
	return &contact, nil
}

func (c *ContactStore) Update(ctx context.Context, contact models.Contact) error {
	n, err := c.s.locateRow(ctx, contactsTable, byID(contact.ID))
	if err != nil {
		return fmt.Errorf("locate contact %s: %w", contact.ID, err)
	}
	if err := c.s.writeRow(ctx, contactsTable, n, contactToRow(contact, c.s.now())); err != nil {
		return fmt.Errorf("update contact: %w", err)
	}
	c.s.cache.Delete(contactsKey)
	return nil
}

func (c *ContactStore) Delete(ctx context.Context, id string) error {
	n, err := c.s.locateRow(ctx, contactsTable, byID(id))
	if err != nil {
		return fmt.Errorf("locate contact %s: %w", id, err)
	}
	if err := c.s.clearRow(ctx, contactsTable, n); err != nil {
		return fmt.Errorf("delete contact: %w", err)
	}
	c.s.cache.Delete(contactsKey)
	return nil
}
