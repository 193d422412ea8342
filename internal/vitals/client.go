package vitals

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/five82/mmwdash/internal/request"
)

// Fetcher is what the poller and the UI need from the backend.
// It is implemented by *API and can be faked in tests.
type Fetcher interface {
	Monitor(ctx context.Context, uid string) (Monitor, error)
	BigScreen(ctx context.Context, warnings int) (BigScreen, error)
}

var _ Fetcher = (*API)(nil)

// hrvWindow is how much HRV history the monitor view asks for.
const hrvWindow = 10 * time.Minute

// API wraps the vitals endpoints around one shared request.Client.
type API struct {
	client *request.Client
	now    func() time.Time
}

// New returns an API bound to client.
func New(client *request.Client) *API {
	return &API{client: client, now: time.Now}
}

// OnlineUserCount fetches the number of users currently online.
func (a *API) OnlineUserCount(ctx context.Context) (*request.Response[OnlineUserCount], error) {
	return request.Get[OnlineUserCount](ctx, a.client, "/usr/getOnlineUsrCnt")
}

// UserWarnings fetches the latest n warnings.
func (a *API) UserWarnings(ctx context.Context, n int) (*request.Response[[]UserWarning], error) {
	return request.Get[[]UserWarning](ctx, a.client, "/usr/getUsrWarning/"+strconv.Itoa(n))
}

// WarningCount fetches total, processed and unprocessed warning counts.
func (a *API) WarningCount(ctx context.Context) (*request.Response[WarningCount], error) {
	return request.Get[WarningCount](ctx, a.client, "/usr/getWarningCnt")
}

// UserCountPerCity fetches the user distribution by city.
func (a *API) UserCountPerCity(ctx context.Context) (*request.Response[[]CityUserCount], error) {
	return request.Get[[]CityUserCount](ctx, a.client, "/usr/getUsrCntPerCity")
}

// WarningCountPerDate fetches the number of warnings per day.
func (a *API) WarningCountPerDate(ctx context.Context) (*request.Response[[]DateWarningCount], error) {
	return request.Get[[]DateWarningCount](ctx, a.client, "/usr/getUsrWarningCntPerDate")
}

// BreathWaveform fetches the breathing waveform for uid.
func (a *API) BreathWaveform(ctx context.Context, uid string) (*request.Response[BreathWaveform], error) {
	return request.Get[BreathWaveform](ctx, a.client, uidPath("/br/getWaveform", uid))
}

// BreathRing fetches the breathing loop for uid.
func (a *API) BreathRing(ctx context.Context, uid string) (*request.Response[BreathRing], error) {
	return request.Get[BreathRing](ctx, a.client, uidPath("/br/getRing", uid))
}

// BreathWarning fetches the breathing warning id for uid.
func (a *API) BreathWarning(ctx context.Context, uid string) (*request.Response[BreathWarning], error) {
	return request.Get[BreathWarning](ctx, a.client, uidPath("/br/getWarning", uid))
}

// ArrhythmiaWaveform fetches the SCG waveform and arrhythmia flag for uid.
func (a *API) ArrhythmiaWaveform(ctx context.Context, uid string) (*request.Response[ArrhythmiaWaveform], error) {
	return request.Get[ArrhythmiaWaveform](ctx, a.client, uidPath("/arr/getWaveform", uid))
}

// HeartRateWaveform fetches the heart-rate series for uid.
func (a *API) HeartRateWaveform(ctx context.Context, uid string) (*request.Response[HeartRateWaveform], error) {
	return request.Get[HeartRateWaveform](ctx, a.client, uidPath("/hr/getWaveform", uid))
}

// LatestHeartRate fetches the most recent heart-rate sample for uid.
func (a *API) LatestHeartRate(ctx context.Context, uid string) (*request.Response[LatestHeartRate], error) {
	return request.Get[LatestHeartRate](ctx, a.client, uidPath("/hr/getOneWave", uid))
}

// Stress fetches the stress index for uid.
func (a *API) Stress(ctx context.Context, uid string) (*request.Response[Stress], error) {
	return request.Get[Stress](ctx, a.client, uidPath("/hr/getStress", uid))
}

// BreathHistory fetches respiratory-rate history.
func (a *API) BreathHistory(ctx context.Context, p HistoryParams) (*request.Response[BreathHistory], error) {
	return request.Post[BreathHistory](ctx, a.client, "/history/br/getBrData", p)
}

// BreathIndex fetches the breathing index for the range.
func (a *API) BreathIndex(ctx context.Context, p HistoryParams) (*request.Response[BreathIndex], error) {
	return request.Post[BreathIndex](ctx, a.client, "/history/br/index", p)
}

// HeartHistory fetches heart-rate history.
func (a *API) HeartHistory(ctx context.Context, p HistoryParams) (*request.Response[HeartHistory], error) {
	return request.Post[HeartHistory](ctx, a.client, "/history/hr/getHeartData", p)
}

// HRVHistory fetches heart-rate variability history.
func (a *API) HRVHistory(ctx context.Context, p HistoryParams) (*request.Response[HRVHistory], error) {
	return request.Post[HRVHistory](ctx, a.client, "/history/hr/getHrvData", p)
}

// HeartStat fetches min/avg/max heart rate for the range.
func (a *API) HeartStat(ctx context.Context, p HistoryParams) (*request.Response[HeartStat], error) {
	return request.Post[HeartStat](ctx, a.client, "/history/hr/stat", p)
}

// ArrhythmiaCounts fetches arrhythmia counts per day.
func (a *API) ArrhythmiaCounts(ctx context.Context, p HistoryParams) (*request.Response[ArrhythmiaCounts], error) {
	return request.Post[ArrhythmiaCounts](ctx, a.client, "/history/arr/arr_count_list", p)
}

// Monitor collects everything the monitor view shows for uid. Calls run in
// sequence; a failed call leaves its field nil and the errors are joined.
// An expired session stops the remaining calls.
func (a *API) Monitor(ctx context.Context, uid string) (Monitor, error) {
	if a == nil {
		return Monitor{}, fmt.Errorf("api is nil")
	}
	m := Monitor{UID: uid}
	now := a.now()
	hrv := HistoryRange(uid, now.Add(-hrvWindow), now)

	err := run(
		func() error { return collect(&m.Breath)(a.BreathWaveform(ctx, uid)) },
		func() error { return collect(&m.Ring)(a.BreathRing(ctx, uid)) },
		func() error { return collect(&m.Warning)(a.BreathWarning(ctx, uid)) },
		func() error { return collect(&m.Arrhythmia)(a.ArrhythmiaWaveform(ctx, uid)) },
		func() error { return collect(&m.HeartRate)(a.HeartRateWaveform(ctx, uid)) },
		func() error { return collect(&m.Latest)(a.LatestHeartRate(ctx, uid)) },
		func() error { return collect(&m.Stress)(a.Stress(ctx, uid)) },
		func() error { return collect(&m.HRV)(a.HRVHistory(ctx, hrv)) },
	)
	return m, err
}

// BigScreen collects the aggregate wall-display data.
func (a *API) BigScreen(ctx context.Context, warnings int) (BigScreen, error) {
	if a == nil {
		return BigScreen{}, fmt.Errorf("api is nil")
	}
	var b BigScreen

	err := run(
		func() error { return collect(&b.Online)(a.OnlineUserCount(ctx)) },
		func() error { return collect(&b.WarningCount)(a.WarningCount(ctx)) },
		func() error {
			resp, err := a.UserWarnings(ctx, warnings)
			if err != nil {
				return err
			}
			b.Warnings, b.HasWarningList = resp.Data, true
			return nil
		},
		func() error {
			resp, err := a.UserCountPerCity(ctx)
			if err != nil {
				return err
			}
			b.PerCity, b.HasPerCity = resp.Data, true
			return nil
		},
		func() error {
			resp, err := a.WarningCountPerDate(ctx)
			if err != nil {
				return err
			}
			b.PerDate, b.HasPerDate = resp.Data, true
			return nil
		},
	)
	return b, err
}

// run calls each step in order and joins their errors. It stops early once
// the session has expired or ctx is done.
func run(steps ...func() error) error {
	var errs []error
	for _, step := range steps {
		err := step()
		if err == nil {
			continue
		}
		errs = append(errs, err)
		if request.IsSessionExpired(err) || errors.Is(err, context.Canceled) {
			break
		}
	}
	return errors.Join(errs...)
}

// collect stores the payload of a successful call in dst.
func collect[T any](dst **T) func(*request.Response[T], error) error {
	return func(resp *request.Response[T], err error) error {
		if err != nil {
			return err
		}
		data := resp.Data
		*dst = &data
		return nil
	}
}

func uidPath(prefix, uid string) string {
	return prefix + "/uid/" + url.PathEscape(uid)
}
