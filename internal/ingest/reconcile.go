package ingest

import (
	"context"
	"time"

	"socialpulse/internal/models"
	"socialpulse/internal/store"
)

// reconcile writes the new rows of one run. Each cache is loaded once from
// the transaction and extended with what the run creates.
func reconcile(ctx context.Context, tx store.IngestTx, observations []models.Observation) (models.IngestResult, error) {
	var created models.IngestResult

	// Accounts
	knownAccounts, err := tx.AccountIDs(ctx)
	if err != nil {
		return created, err
	}
	var newAccounts []string
	for _, o := range observations {
		if _, ok := knownAccounts[o.AccountID]; !ok {
			knownAccounts[o.AccountID] = struct{}{}
			newAccounts = append(newAccounts, o.AccountID)
		}
	}
	if err := tx.InsertAccounts(ctx, newAccounts); err != nil {
		return created, err
	}
	created.AccountsCreated = len(newAccounts)

	// Categories
	categoryIDs, err := tx.Categories(ctx)
	if err != nil {
		return created, err
	}
	var newCategories []string
	seen := make(map[string]struct{})
	for _, o := range observations {
		if _, ok := categoryIDs[o.Category]; ok {
			continue
		}
		if _, ok := seen[o.Category]; ok {
			continue
		}
		seen[o.Category] = struct{}{}
		newCategories = append(newCategories, o.Category)
	}
	if len(newCategories) > 0 {
		if err := tx.InsertCategories(ctx, newCategories); err != nil {
			return created, err
		}
		// Ids are assigned by the store.
		if categoryIDs, err = tx.Categories(ctx); err != nil {
			return created, err
		}
	}
	created.CategoriesCreated = len(newCategories)

	// Associations
	knownAssociations, err := tx.AssociationKeys(ctx)
	if err != nil {
		return created, err
	}
	var newAssociations []models.AccountCategory
	for _, o := range observations {
		ac := models.AccountCategory{AccountID: o.AccountID, CategoryID: categoryIDs[o.Category]}
		if _, ok := knownAssociations[ac.Key()]; ok {
			continue
		}
		knownAssociations[ac.Key()] = struct{}{}
		newAssociations = append(newAssociations, ac)
	}

	// Historical
	from, to := timeRange(observations)
	stored, err := tx.HistoricalKeys(ctx, from, to)
	if err != nil {
		return created, err
	}
	decided := make(map[models.HistoricalKey]struct{})
	var newHistoricals []models.Historical
	for _, o := range observations {
		h := models.Historical{
			AccountID:       o.AccountID,
			SubscriberCount: o.SubscriberCount,
			ObservedAt:      models.CanonicalTime(o.ObservedAt),
		}
		key := h.Key()
		if _, ok := decided[key]; ok {
			continue
		}
		decided[key] = struct{}{}
		if _, ok := stored[key]; ok {
			continue
		}
		newHistoricals = append(newHistoricals, h)
	}

	if err := tx.InsertAssociations(ctx, newAssociations); err != nil {
		return created, err
	}
	if err := tx.InsertHistoricals(ctx, newHistoricals); err != nil {
		return created, err
	}
	created.AssociationsCreated = len(newAssociations)
	created.ObservationsCreated = len(newHistoricals)

	return created, nil
}

// timeRange returns the earliest and latest canonical observation times.
func timeRange(observations []models.Observation) (from, to time.Time) {
	for i, o := range observations {
		t := models.CanonicalTime(o.ObservedAt)
		if i == 0 || t.Before(from) {
			from = t
		}
		if i == 0 || t.After(to) {
			to = t
		}
	}
	return from, to
}
