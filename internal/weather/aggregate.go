package weather

import "time"

// DailyAggregate folds the forecast points that fall on one local calendar day.
type DailyAggregate struct {
	Date        time.Time // local midnight
	TempMin     float64
	TempMax     float64
	Description string
	Icon        string
	Humidity    float64
	WindSpeed   float64
}

// AggregateDaily groups points by calendar day in loc, keeping the first
// point's description, icon, humidity and wind and folding min/max across
// the day. Days keep the order in which they first appear; at most limit
// days are returned (limit <= 0 means no limit).
func AggregateDaily(points []ForecastPoint, loc *time.Location, limit int) []DailyAggregate {
	if loc == nil {
		loc = time.UTC
	}

	days := make([]DailyAggregate, 0)
	index := make(map[string]int)

	for _, p := range points {
		ts := time.Unix(p.Time, 0).In(loc)
		key := ts.Format("2006-01-02")

		i, ok := index[key]
		if !ok {
			if limit > 0 && len(days) >= limit {
				continue
			}
			index[key] = len(days)
			days = append(days, DailyAggregate{
				Date:        time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, loc),
				TempMin:     p.TempMin,
				TempMax:     p.TempMax,
				Description: p.Description,
				Icon:        p.Icon,
				Humidity:    p.Humidity,
				WindSpeed:   p.WindSpeed,
			})
			continue
		}

		if p.TempMin < days[i].TempMin {
			days[i].TempMin = p.TempMin
		}
		if p.TempMax > days[i].TempMax {
			days[i].TempMax = p.TempMax
		}
	}

	return days
}
