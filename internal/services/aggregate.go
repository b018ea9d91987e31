package services

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/GregMSThompson/recovery-dashboard/internal/display"
	"github.com/GregMSThompson/recovery-dashboard/internal/dto"
	"github.com/GregMSThompson/recovery-dashboard/internal/models"
)

const (
	trendMonths      = 6
	trendLabelLayout = "Jan 2006"
)

var hundred = decimal.NewFromInt(100)

// Targets are the constant goals drawn next to the collection series.
type Targets struct {
	Monthly  decimal.Decimal
	PerAgent decimal.Decimal
}

// Aggregate runs every reduction over already filtered records.
func Aggregate(files []models.BankFileRecord, collections []models.CollectionRecord, now time.Time, targets Targets) dto.AggregationResult {
	views := DeriveAll(files, now)
	trend := MonthlyTrend(collections, now, targets.Monthly)

	achieved, target := decimal.Zero, decimal.Zero
	for _, p := range trend {
		achieved = achieved.Add(p.Value)
		target = target.Add(p.Target)
	}

	return dto.AggregationResult{
		KPIs:         kpisFromViews(views, collections),
		Trend:        trend,
		Agents:       ByAgent(collections, targets.PerAgent),
		Distribution: Distribution(files),
		Statuses:     StatusBreakdown(views),
		Banks:        ByBank(files),
		Achievement:  Achievement(achieved, target),
	}
}

// ComputeKPIs returns the headline totals. Overdue counts the outstanding of
// files that are unassigned or expired; collected counts approved entries only.
func ComputeKPIs(files []models.BankFileRecord, collections []models.CollectionRecord, now time.Time) dto.KPIs {
	return kpisFromViews(DeriveAll(files, now), collections)
}

func kpisFromViews(views []dto.ExpiryView, collections []models.CollectionRecord) dto.KPIs {
	k := dto.KPIs{
		TotalAccounts:    len(views),
		TotalOutstanding: decimal.Zero,
		TotalOverdue:     decimal.Zero,
		TotalCollected:   decimal.Zero,
	}
	for _, v := range views {
		k.TotalOutstanding = k.TotalOutstanding.Add(v.File.Outstanding)
		expired := v.Status == dto.StatusExpired
		if expired {
			k.ExpiredFiles++
		}
		if expired || v.File.Unassigned() {
			k.TotalOverdue = k.TotalOverdue.Add(v.File.Outstanding)
		}
	}
	k.ActiveFiles = k.TotalAccounts - k.ExpiredFiles

	for _, c := range collections {
		if c.Approved() {
			k.TotalCollected = k.TotalCollected.Add(c.Amount)
		}
	}
	return k
}

// MonthlyTrend buckets approved collections into the six calendar months
// ending with the month of now, oldest first. Empty months stay at zero.
func MonthlyTrend(collections []models.CollectionRecord, now time.Time, target decimal.Decimal) []dto.TrendPoint {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -(trendMonths - 1), 0)

	points := make([]dto.TrendPoint, trendMonths)
	index := make(map[int]int, trendMonths)
	for i := 0; i < trendMonths; i++ {
		month := first.AddDate(0, i, 0)
		points[i] = dto.TrendPoint{
			Bucket: month.Format(trendLabelLayout),
			Value:  decimal.Zero,
			Target: target,
		}
		index[monthKey(month)] = i
	}

	for _, c := range collections {
		if !c.Approved() {
			continue
		}
		at, ok := c.Date()
		if !ok {
			continue
		}
		i, ok := index[monthKey(at.In(now.Location()))]
		if !ok {
			continue
		}
		points[i].Value = points[i].Value.Add(c.Amount)
	}
	return points
}

func monthKey(t time.Time) int {
	return t.Year()*12 + int(t.Month()) - 1
}

// ByAgent sums approved collections per agent, largest amount first.
func ByAgent(collections []models.CollectionRecord, target decimal.Decimal) []dto.AgentPoint {
	items := map[string]*dto.AgentPoint{}
	for _, c := range collections {
		if !c.Approved() {
			continue
		}
		agent := c.AgentName
		if agent == "" {
			agent = dto.UnknownAgent
		}
		item, ok := items[agent]
		if !ok {
			item = &dto.AgentPoint{Agent: agent, Amount: decimal.Zero, Target: target}
			items[agent] = item
		}
		item.Amount = item.Amount.Add(c.Amount)
		item.Count++
	}

	out := make([]dto.AgentPoint, 0, len(items))
	for _, item := range items {
		item.Achievement = Achievement(item.Amount, item.Target)
		out = append(out, *item)
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Amount.Cmp(out[j].Amount); c != 0 {
			return c > 0
		}
		return out[i].Agent < out[j].Agent
	})
	return out
}

type distributionKey struct {
	bank    string
	product string
}

// Distribution shares files out by bank and product. Percentages are rounded
// half-up to whole numbers and are 0 for an empty input.
func Distribution(files []models.BankFileRecord) []dto.DistributionPoint {
	counts := map[distributionKey]int{}
	for _, f := range files {
		counts[distributionKey{bank: f.BankName, product: f.ProductType}]++
	}

	total := len(files)
	out := make([]dto.DistributionPoint, 0, len(counts))
	for k, n := range counts {
		attrs := display.For(k.bank, k.product)
		out = append(out, dto.DistributionPoint{
			Bank:        k.bank,
			ProductType: k.product,
			Label:       attrs.Label,
			Color:       attrs.Color,
			Count:       n,
			Percent:     Percent(n, total),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Label < out[j].Label
	})
	return out
}

// Percent returns round(100*part/total), 0 when total is 0.
func Percent(part, total int) int64 {
	if total == 0 {
		return 0
	}
	return decimal.NewFromInt(int64(part)).Mul(hundred).
		Div(decimal.NewFromInt(int64(total))).
		Round(0).IntPart()
}

// Achievement returns achieved/target*100 rounded half-up to one decimal,
// 0 when target is 0.
func Achievement(achieved, target decimal.Decimal) decimal.Decimal {
	if target.IsZero() {
		return decimal.Zero
	}
	return achieved.Mul(hundred).Div(target).Round(1)
}

var statusOrder = []dto.FileStatus{dto.StatusActive, dto.StatusExpiringSoon, dto.StatusExpired}

// StatusBreakdown counts files and their outstanding per lifecycle status.
func StatusBreakdown(views []dto.ExpiryView) []dto.StatusPoint {
	points := make([]dto.StatusPoint, len(statusOrder))
	index := make(map[dto.FileStatus]int, len(statusOrder))
	for i, s := range statusOrder {
		points[i] = dto.StatusPoint{Status: s, Outstanding: decimal.Zero}
		index[s] = i
	}
	for _, v := range views {
		i := index[v.Status]
		points[i].Count++
		points[i].Outstanding = points[i].Outstanding.Add(v.File.Outstanding)
	}
	return points
}

// ByBank totals files per bank, largest outstanding first.
func ByBank(files []models.BankFileRecord) []dto.BankPoint {
	items := map[string]*dto.BankPoint{}
	for _, f := range files {
		item, ok := items[f.BankName]
		if !ok {
			item = &dto.BankPoint{Bank: f.BankName, Outstanding: decimal.Zero}
			items[f.BankName] = item
		}
		item.Count++
		item.Outstanding = item.Outstanding.Add(f.Outstanding)
	}

	out := make([]dto.BankPoint, 0, len(items))
	for _, item := range items {
		out = append(out, *item)
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Outstanding.Cmp(out[j].Outstanding); c != 0 {
			return c > 0
		}
		return out[i].Bank < out[j].Bank
	})
	return out
}
