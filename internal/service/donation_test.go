package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SENODROOM/PublicBoard-Backend/internal/apperror"
	"github.com/SENODROOM/PublicBoard-Backend/internal/model"
	"github.com/SENODROOM/PublicBoard-Backend/internal/repository/memstore"
)

func TestDonationCreate_SimulatedCompletion(t *testing.T) {
	store := memstore.NewEmpty()
	svc := NewDonationService(store, testLogger())

	donation, err := svc.Create(context.Background(), nil, CreateDonationInput{
		DonorName: "Generous Neighbor",
		Amount:    25,
	})
	require.NoError(t, err)

	assert.Equal(t, model.DonationCompleted, donation.Status)
	assert.True(t, strings.HasPrefix(donation.PaymentRef, "sim_"))
	assert.Equal(t, "usd", donation.Currency)
}

func TestDonationCreate_MinimumAmount(t *testing.T) {
	store := memstore.NewEmpty()
	svc := NewDonationService(store, testLogger())

	_, err := svc.Create(context.Background(), nil, CreateDonationInput{
		DonorName: "Cheapskate",
		Amount:    0.50,
	})
	require.ErrorIs(t, err, apperror.ErrValidation)
}

func TestDonationStats_CompletedOnly(t *testing.T) {
	store := memstore.NewEmpty()
	svc := NewDonationService(store, testLogger())
	ctx := context.Background()

	_, err := svc.Create(ctx, nil, CreateDonationInput{DonorName: "Alice", Amount: 50})
	require.NoError(t, err)

	failed := &model.Donation{
		Donor:  model.Donor{Name: "Bob"},
		Amount: 30,
		Status: model.DonationFailed,
	}
	require.NoError(t, store.CreateDonation(ctx, failed))

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 50.0, stats.TotalRaised)
	assert.Equal(t, 1, stats.DonationCount)
	assert.Equal(t, 50.0, stats.AvgDonation)
}

func TestListCompleted_SanitizesAnonymousDonors(t *testing.T) {
	store := memstore.NewEmpty()
	svc := NewDonationService(store, testLogger())
	ctx := context.Background()

	_, err := svc.Create(ctx, nil, CreateDonationInput{
		DonorName:   "Shy Donor",
		DonorEmail:  "shy@example.com",
		Amount:      10,
		IsAnonymous: true,
	})
	require.NoError(t, err)

	donations, err := svc.ListCompleted(ctx)
	require.NoError(t, err)
	require.Len(t, donations, 1)
	assert.Equal(t, "Anonymous", donations[0].Donor.Name)
	assert.Empty(t, donations[0].Donor.Email)
}

func TestReportService_UnavailableInFallback(t *testing.T) {
	svc := NewReportService(nil, testLogger())

	_, err := svc.IssueStats(context.Background())
	require.ErrorIs(t, err, apperror.ErrUnavailable)
}
