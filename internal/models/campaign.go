package models

import "time"

// DateLayout is the wire format for campaign dates, both in Telegram
// confirmations and in the persisted state file.
const DateLayout = "2006-01-02"

// CampaignConfig describes one autonomous posting campaign. Dates are
// inclusive calendar days in DateLayout form.
type CampaignConfig struct {
	StartDate    string   `json:"start_date"`
	EndDate      string   `json:"end_date"`
	TweetsPerDay int      `json:"tweets_per_day"`
	Themes       []string `json:"themes"`
}

func (c CampaignConfig) ParseDates() (start, end time.Time, err error) {
	start, err = time.Parse(DateLayout, c.StartDate)
	if err != nil {
		return
	}
	end, err = time.Parse(DateLayout, c.EndDate)
	return
}

// DailyCounter tracks how many autonomous posts went out on one day.
type DailyCounter struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// CampaignState is the whole persisted state: the active campaign (nil
// when none is configured) plus today's counter.
type CampaignState struct {
	Config     *CampaignConfig `json:"config"`
	DailyStats DailyCounter    `json:"daily_stats"`
}
