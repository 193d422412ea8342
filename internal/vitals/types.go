package vitals

import (
	"time"

	"github.com/five82/mmwdash/internal/timefmt"
)

const historyTimeLayout = "2006-01-02 15:04:05"

// OnlineUserCount mirrors /usr/getOnlineUsrCnt.
type OnlineUserCount struct {
	Count int `json:"count"`
}

// UserWarning is one alert raised for a tracked user.
type UserWarning struct {
	ID             int    `json:"id"`
	UserID         string `json:"userId"`
	WarningType    string `json:"warningType"`
	WarningTime    string `json:"warningTime"`
	WarningContent string `json:"warningContent"`
	IsProcessed    bool   `json:"isProcessed"`
}

// WarningCount mirrors /usr/getWarningCnt.
type WarningCount struct {
	Total       int `json:"total"`
	Processed   int `json:"processed"`
	Unprocessed int `json:"unprocessed"`
}

// CityUserCount is one row of /usr/getUsrCntPerCity.
type CityUserCount struct {
	CityName string `json:"cityName"`
	Count    int    `json:"count"`
}

// DateWarningCount is one row of /usr/getUsrWarningCntPerDate.
type DateWarningCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// BreathWaveform mirrors /br/getWaveform.
type BreathWaveform struct {
	UID            string    `json:"uid"`
	BreathWaveform []float64 `json:"breath_waveform"`
	InBed          bool      `json:"is_in_bed"`
}

// BreathRing mirrors /br/getRing: the breathing loop as x/y samples.
type BreathRing struct {
	UID   string    `json:"uid"`
	RingX []float64 `json:"breath_ring_x"`
	RingY []float64 `json:"breath_ring_y"`
}

// BreathWarning mirrors /br/getWarning. Zero means no warning.
type BreathWarning struct {
	UID       string `json:"uid"`
	WarningID int    `json:"breath_warning_id"`
}

// ArrhythmiaWaveform mirrors /arr/getWaveform.
type ArrhythmiaWaveform struct {
	UID          string    `json:"uid"`
	SCGWaveform  []float64 `json:"scg_waveform"`
	IsArrhythmia int       `json:"isArrhythmia"`
	InBed        bool      `json:"is_in_bed"`
}

// Arrhythmic reports whether the latest window was flagged.
func (a ArrhythmiaWaveform) Arrhythmic() bool {
	return a.IsArrhythmia != 0
}

// HeartRateWaveform mirrors /hr/getWaveform.
type HeartRateWaveform struct {
	UID           string    `json:"uid"`
	HeartWaveform []float64 `json:"heart_waveform"`
	InBed         bool      `json:"is_in_bed"`
	TimeStamp     []int64   `json:"time_stamp"`
}

// LatestHeartRate mirrors /hr/getOneWave.
type LatestHeartRate struct {
	UID       string  `json:"uid"`
	Timestamp string  `json:"timestamp"`
	HeartRate float64 `json:"heart_rate"`
}

// Stress mirrors /hr/getStress.
type Stress struct {
	UID         string  `json:"uid"`
	Timestamp   string  `json:"timestamp"`
	StressIndex float64 `json:"stress_index"`
	StressLevel string  `json:"stress_level"`
}

// HistoryParams is the body of every /history call.
type HistoryParams struct {
	UID       string `json:"uid"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// HistoryRange builds HistoryParams for [start, end] in the backend's layout.
func HistoryRange(uid string, start, end time.Time) HistoryParams {
	return HistoryParams{
		UID:       uid,
		StartTime: start.Format(historyTimeLayout),
		EndTime:   end.Format(historyTimeLayout),
	}
}

// RespiratorySample is one point of the breathing history.
type RespiratorySample struct {
	Timestamp       string  `json:"timestamp"`
	RespiratoryRate float64 `json:"respiratory_rate"`
}

// BreathHistory mirrors /history/br/getBrData.
type BreathHistory struct {
	UID  string              `json:"uid"`
	Data []RespiratorySample `json:"data"`
}

// BreathIndex mirrors /history/br/index.
type BreathIndex struct {
	UID     string  `json:"uid"`
	BrIndex float64 `json:"br_index"`
	Date    string  `json:"date"`
}

// HeartSample is one point of the heart-rate history.
type HeartSample struct {
	Timestamp string  `json:"timestamp"`
	HeartRate float64 `json:"heart_rate"`
}

// HeartHistory mirrors /history/hr/getHeartData.
type HeartHistory struct {
	UID  string        `json:"uid"`
	Data []HeartSample `json:"data"`
}

// HRVHistory mirrors /history/hr/getHrvData. Missing samples are nil.
type HRVHistory struct {
	UID       string     `json:"uid"`
	InBed     bool       `json:"is_in_bed"`
	TimeStamp []int64    `json:"time_stamp"`
	HRVData   []*float64 `json:"hrv_data"`
}

// HeartStat mirrors /history/hr/stat.
type HeartStat struct {
	UID          string  `json:"uid"`
	AvgHeartRate float64 `json:"avg_heart_rate"`
	MaxHeartRate float64 `json:"max_heart_rate"`
	MinHeartRate float64 `json:"min_heart_rate"`
	Date         string  `json:"date"`
}

// ArrhythmiaDayCount is one day of the arrhythmia count list.
type ArrhythmiaDayCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// ArrhythmiaCounts mirrors /history/arr/arr_count_list.
type ArrhythmiaCounts struct {
	UID        string               `json:"uid"`
	Counts     []ArrhythmiaDayCount `json:"arr_counts"`
	TotalCount int                  `json:"total_count"`
}

// Monitor is everything the per-user monitor view shows.
type Monitor struct {
	UID        string
	Breath     *BreathWaveform
	Ring       *BreathRing
	Warning    *BreathWarning
	Arrhythmia *ArrhythmiaWaveform
	HeartRate  *HeartRateWaveform
	Latest     *LatestHeartRate
	Stress     *Stress
	HRV        *HRVHistory
}

// InBed reports the bed-presence flag from whichever waveform reported one.
func (m Monitor) InBed() bool {
	switch {
	case m.Breath != nil:
		return m.Breath.InBed
	case m.HeartRate != nil:
		return m.HeartRate.InBed
	case m.Arrhythmia != nil:
		return m.Arrhythmia.InBed
	default:
		return false
	}
}

// HeartRateLabels formats the heart-rate sample times as HH:MM.
func (m Monitor) HeartRateLabels() []string {
	if m.HeartRate == nil {
		return nil
	}
	labels := make([]string, len(m.HeartRate.TimeStamp))
	for i, ts := range m.HeartRate.TimeStamp {
		labels[i] = timefmt.HM(ts)
	}
	return labels
}

// BigScreen is the aggregate wall-display data.
type BigScreen struct {
	Online         *OnlineUserCount
	Warnings       []UserWarning
	WarningCount   *WarningCount
	PerCity        []CityUserCount
	PerDate        []DateWarningCount
	HasPerCity     bool
	HasPerDate     bool
	HasWarningList bool
}
