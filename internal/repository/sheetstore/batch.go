package sheetstore

import (
	"context"
	"fmt"

	"github.com/lalith-99/sheetcrm/internal/models"
	"github.com/lalith-99/sheetcrm/internal/repository"
	"golang.org/x/sync/errgroup"
)

// Loader fills a repository.Snapshot from the six sheets the main screen
// needs, reading them concurrently.
type Loader struct {
	companies *CompanyStore
	contacts  *ContactStore
	tags      *TagStore
}

func NewLoader(s *Store) *Loader {
	return &Loader{
		companies: NewCompanyStore(s),
		contacts:  NewContactStore(s),
		tags:      NewTagStore(s),
	}
}

// LoadAll is all-or-nothing: the first failed read cancels the others and
// is returned.
func (l *Loader) LoadAll(ctx context.Context) (*repository.Snapshot, error) {
	var snap repository.Snapshot
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		snap.Companies, err = l.companies.List(ctx)
		return err
	})
	g.Go(func() (err error) {
		snap.Contacts, err = l.contacts.List(ctx)
		return err
	})
	g.Go(func() (err error) {
		snap.CompanyTags, err = l.tags.ListTags(ctx, models.KindCompany)
		return err
	})
	g.Go(func() (err error) {
		snap.ContactTags, err = l.tags.ListTags(ctx, models.KindContact)
		return err
	})
	g.Go(func() (err error) {
		snap.CompanyTagRelations, err = l.tags.ListRelations(ctx, models.KindCompany)
		return err
	})
	g.Go(func() (err error) {
		snap.ContactTagRelations, err = l.tags.ListRelations(ctx, models.KindContact)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	return &snap, nil
}
