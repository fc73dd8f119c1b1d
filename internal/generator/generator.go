package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"fraudstream/internal/domain"
)

var merchantCatalog = map[string][]string{
	"groceries":   {"Walmart", "Target", "Kroger", "Safeway"},
	"electronics": {"BestBuy", "Apple Store", "Microsoft Store"},
	"gas":         {"Shell", "Exxon", "Chevron", "BP"},
	"food":        {"McDonalds", "Starbucks", "Subway", "Chipotle"},
	"travel":      {"United Airlines", "Hilton", "Uber", "Airbnb"},
	"other":       {"Amazon", "Unknown_Merchant"},
}

var categories = []string{"groceries", "electronics", "gas", "food", "travel", "other"}

// domesticLocations excludes "International", which the generator reserves
// for injected location fraud.
var domesticLocations = []string{
	"New York", "Los Angeles", "Chicago", "Houston", "Phoenix", "Philadelphia",
}

const fraudLocation = "International"
const fraudMerchant = "Unknown_Merchant"

type profile struct {
	avgAmount          float64
	primaryLocation    string
	favoriteCategories []string
}

// Generator produces synthetic transactions over a fixed user population.
// Each user gets a spending profile so the normal traffic looks coherent;
// with the configured probability a transaction is replaced by one of the
// three injected fraud shapes. Deterministic for a given seed apart from
// wall-clock timestamps.
type Generator struct {
	users            []string
	profiles         map[string]profile
	fraudProbability float64
	rng              *rand.Rand
	seq              int64
	logger           *slog.Logger
}

func New(numUsers int, fraudProbability float64, seed int64, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}

	rng := rand.New(rand.NewSource(seed))

	g := &Generator{
		users:            make([]string, 0, numUsers),
		profiles:         make(map[string]profile, numUsers),
		fraudProbability: fraudProbability,
		rng:              rng,
		logger:           logger,
	}

	for i := 1; i <= numUsers; i++ {
		user := fmt.Sprintf("user_%04d", i)
		g.users = append(g.users, user)

		favorites := make([]string, len(categories))
		copy(favorites, categories)
		rng.Shuffle(len(favorites), func(a, b int) {
			favorites[a], favorites[b] = favorites[b], favorites[a]
		})

		g.profiles[user] = profile{
			avgAmount:          20 + rng.Float64()*180,
			primaryLocation:    domesticLocations[rng.Intn(len(domesticLocations))],
			favoriteCategories: favorites[:3],
		}
	}

	return g
}

// Next generates a single transaction. Timestamps progress one second per
// generated record so the stream has a usable time axis.
func (g *Generator) Next() domain.Transaction {
	user := g.users[g.rng.Intn(len(g.users))]
	prof := g.profiles[user]

	var amount float64
	var category, merchant, location string

	if g.rng.Float64() < g.fraudProbability {
		switch g.rng.Intn(3) {
		case 0: // high amount
			amount = round2(5000 + g.rng.Float64()*10000)
			category = pick(g.rng, categories)
			merchant = pick(g.rng, merchantCatalog[category])
			location = prof.primaryLocation
		case 1: // unusual location
			amount = round2(100 + g.rng.Float64()*400)
			category = pick(g.rng, prof.favoriteCategories)
			merchant = pick(g.rng, merchantCatalog[category])
			location = fraudLocation
		default: // suspicious merchant
			amount = round2(200 + g.rng.Float64()*800)
			category = "other"
			merchant = fraudMerchant
			location = prof.primaryLocation
		}
	} else {
		amount = round2(10 + g.rng.Float64()*prof.avgAmount*1.5)
		category = pick(g.rng, prof.favoriteCategories)
		merchant = pick(g.rng, merchantCatalog[category])
		location = prof.primaryLocation
		if g.rng.Float64() >= 0.9 {
			location = domesticLocations[g.rng.Intn(len(domesticLocations))]
		}
	}

	g.seq++
	now := time.Now().UnixMilli()
	return domain.Transaction{
		TransactionID: fmt.Sprintf("txn_%d_%04d", now, 1000+g.rng.Intn(9000)),
		UserID:        user,
		Amount:        amount,
		Merchant:      merchant,
		Category:      category,
		Timestamp:     now + g.seq*1000,
		Location:      location,
	}
}

// Run marshals transactions onto sink until count records have been
// produced (count <= 0 means unbounded) or ctx is canceled. It does not
// close sink: other producers may share the channel.
func (g *Generator) Run(ctx context.Context, sink chan<- []byte, count int, interval time.Duration) {
	produced := 0
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if count > 0 && produced >= count {
			g.logger.Info("generator finished", slog.Int("produced", produced))
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		tx := g.Next()
		raw, err := json.Marshal(tx)
		if err != nil {
			g.logger.Error("failed to marshal generated transaction",
				slog.String("transaction_id", tx.TransactionID),
				slog.String("error", err.Error()))
			continue
		}

		select {
		case sink <- raw:
			produced++
		case <-ctx.Done():
			return
		}
	}
}

func pick(rng *rand.Rand, options []string) string {
	return options[rng.Intn(len(options))]
}

func round2(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}
