package memstore

import (
	"context"
	"sort"
	"time"

	"github.com/SENODROOM/PublicBoard-Backend/internal/model"
	"github.com/SENODROOM/PublicBoard-Backend/internal/repository"
)

func sortDonations(donations []model.Donation, s repository.Sort) {
	switch s.Field {
	case "createdAt", "amount":
	default:
		s = repository.DefaultSort
	}
	sort.SliceStable(donations, func(a, b int) bool {
		da, db := &donations[a], &donations[b]
		if s.Field == "amount" {
			if s.Desc {
				return da.Amount > db.Amount
			}
			return da.Amount < db.Amount
		}
		return compareTimes(da.CreatedAt, db.CreatedAt, s.Desc)
	})
}

// CreateDonation validates and stores a donation record.
func (s *Store) CreateDonation(ctx context.Context, donation *model.Donation) error {
	if donation.Status == "" {
		donation.Status = model.DonationPending
	}
	if donation.Currency == "" {
		donation.Currency = "usd"
	}
	if err := donation.Validate(); err != nil {
		return err
	}

	donation.ID = newID()
	donation.CreatedAt = time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.donations[donation.ID] = cloneDonation(donation)
	return nil
}

// ListCompleted returns completed donations, newest first.
func (s *Store) ListCompleted(ctx context.Context) ([]model.Donation, error) {
	s.mu.RLock()
	donations := []model.Donation{}
	for _, d := range s.donations {
		if d.Status == model.DonationCompleted {
			donations = append(donations, *cloneDonation(d))
		}
	}
	s.mu.RUnlock()

	sortDonations(donations, repository.DefaultSort)
	return donations, nil
}

func (s *Store) FindDonationPage(ctx context.Context, filter repository.DonationFilter, srt repository.Sort, page repository.Page) (*repository.PagedDonations, error) {
	page = page.Normalize()

	s.mu.RLock()
	donations := []model.Donation{}
	for _, d := range s.donations {
		if filter.Status != "" && d.Status != filter.Status {
			continue
		}
		donations = append(donations, *cloneDonation(d))
	}
	s.mu.RUnlock()

	sortDonations(donations, srt)
	total := len(donations)
	return &repository.PagedDonations{
		Records:    pageSlice(donations, page),
		Total:      total,
		Page:       page.Page,
		TotalPages: repository.TotalPages(total, page.Limit),
	}, nil
}
