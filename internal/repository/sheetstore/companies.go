package sheetstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/lalith-99/sheetcrm/internal/models"
)

const companiesKey = "companies"

type CompanyStore struct {
	s *Store
}

func NewCompanyStore(s *Store) *CompanyStore {
	return &CompanyStore{s: s}
}

func (c *CompanyStore) List(ctx context.Context) ([]models.Company, error) {
	return cachedList(ctx, c.s, companiesKey, companiesTable, companyFromRow)
}

func (c *CompanyStore) GetByID(ctx context.Context, id string) (*models.Company, error) {
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

func (c *CompanyStore) FindByDomain(ctx context.Context, domain string) (*models.Company, error) {
	domain = strings.TrimSpace(domain)
	if domain == "" {
		return nil, nil
	}
	all, err := c.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range all {
		if strings.EqualFold(strings.TrimSpace(all[i].Domain), domain) {
			return &all[i], nil
		}
	}
	return nil, nil
}

func (c *CompanyStore) Create(ctx context.Context, company models.Company) (*models.Company, error) {
	if company.ID == "" {
		company.ID = models.NewID(c.s.now())
	}
	if err := c.s.appendRow(ctx, companiesTable, companyToRow(company, c.s.now())); err != nil {
		return nil, fmt.Errorf("insert company: %w", err)
	}
	c.s.cache.Delete(companiesKey)
	return &company, nil
}

func (c *CompanyStore) Update(ctx context.Context, company models.Company) error {
	n, err := c.s.locateRow(ctx, companiesTable, byID(company.ID))
	if err != nil {
		return fmt.Errorf("locate company %s: %w", company.ID, err)
	}
	if err := c.s.writeRow(ctx, companiesTable, n, companyToRow(company, c.s.now())); err != nil {
		return fmt.Errorf("update company: %w", err)
	}
	c.s.cache.Delete(companiesKey)
	return nil
}

func (c *CompanyStore) Delete(ctx context.Context, id string) error {
	n, err := c.s.locateRow(ctx, companiesTable, byID(id))
	if err != nil {
		return fmt.Errorf("locate company %s: %w", id, err)
	}
	if err := c.s.clearRow(ctx, companiesTable, n); err != nil {
		return fmt.Errorf("delete company: %w", err)
	}
	c.s.cache.Delete(companiesKey)
	return nil
}
