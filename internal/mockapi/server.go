// Package mockapi serves the vitals backend API from generated data so the
// dashboard can run without a real device backend.
package mockapi

import (
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/five82/mmwdash/internal/mock"
	"github.com/five82/mmwdash/internal/request"
	"github.com/five82/mmwdash/internal/vitals"
)

// Failure is an envelope the server answers with instead of data.
type Failure struct {
	Code    int
	Message string
}

// ExpiredFailure is what the server returns once the session has expired.
var ExpiredFailure = Failure{Code: request.CodeTokenExpired, Message: "Token expired"}

// Server is an in-memory stand-in for the vitals backend.
type Server struct {
	mu          sync.Mutex
	rng         *rand.Rand
	now         func() time.Time
	log         zerolog.Logger
	failures    map[string]Failure
	expireAfter int
	served      int
	hits        map[string]int
}

// Option customises a Server.
type Option func(*Server)

// WithSeed makes generated data deterministic.
func WithSeed(seed int64) Option {
	return func(s *Server) { s.rng = rand.New(rand.NewSource(seed)) }
}

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// WithLogger sets the logger used for request lines.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Server) { s.log = log.With().Str("component", "mockapi").Logger() }
}

// New returns a Server with a time-seeded generator.
func New(opts ...Option) *Server {
	s := &Server{
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		now:      time.Now,
		log:      zerolog.Nop(),
		failures: make(map[string]Failure),
		hits:     make(map[string]int),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetFailure makes every request for path answer with f. A zero code clears it.
func (s *Server) SetFailure(path string, f Failure) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f.Code == 0 {
		delete(s.failures, path)
		return
	}
	s.failures[path] = f
}

// ExpireSessionAfter makes every request after the next n answer with
// ExpiredFailure. Zero or less disables expiry and resets the counter.
func (s *Server) ExpireSessionAfter(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expireAfter = n
	s.served = 0
}

// Hits reports how many requests reached path.
func (s *Server) Hits(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[path]
}

// Handler returns the chi router serving every endpoint.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)
	r.Use(s.gate)

	r.Route("/usr", func(r chi.Router) {
		r.Get("/getOnlineUsrCnt", s.onlineUsers)
		r.Get("/getUsrWarning/{n}", s.userWarnings)
		r.Get("/getWarningCnt", s.warningCount)
		r.Get("/getUsrCntPerCity", s.usersPerCity)
		r.Get("/getUsrWarningCntPerDate", s.warningsPerDate)
	})
	r.Route("/br", func(r chi.Router) {
		r.Get("/getWaveform/uid/{uid}", s.breathWaveform)
		r.Get("/getRing/uid/{uid}", s.breathRing)
		r.Get("/getWarning/uid/{uid}", s.breathWarning)
	})
	r.Get("/arr/getWaveform/uid/{uid}", s.arrhythmiaWaveform)
	r.Route("/hr", func(r chi.Router) {
		r.Get("/getWaveform/uid/{uid}", s.heartWaveform)
		r.Get("/getOneWave/uid/{uid}", s.latestHeartRate)
		r.Get("/getStress/uid/{uid}", s.stress)
	})
	r.Route("/history", func(r chi.Router) {
		r.Post("/br/getBrData", s.breathHistory)
		r.Post("/br/index", s.breathIndex)
		r.Post("/hr/getHeartData", s.heartHistory)
		r.Post("/hr/getHrvData", s.hrvHistory)
		r.Post("/hr/stat", s.heartStat)
		r.Post("/arr/arr_count_list", s.arrhythmiaCounts)
	})
	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Debug().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("mock request")
	})
}

// gate counts the request and answers with an injected failure when one applies.
func (s *Server) gate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.hits[r.URL.Path]++
		f, failed := s.failures[r.URL.Path]
		if !failed && s.expireAfter > 0 {
			if s.served >= s.expireAfter {
				f, failed = ExpiredFailure, true
			} else {
				s.served++
			}
		}
		s.mu.Unlock()

		if failed {
			respond(w, request.Envelope{Code: f.Code, Message: f.Message})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func respond(w http.ResponseWriter, env request.Envelope) {
	data, err := json.Marshal(env)
	if err != nil {
		http.Error(w, "marshal envelope", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func ok(w http.ResponseWriter, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, "marshal payload", http.StatusInternalServerError)
		return
	}
	respond(w, request.Envelope{Code: request.CodeSuccess, Message: "success", Data: data})
}

func badRequest(w http.ResponseWriter, message string) {
	respond(w, request.Envelope{Code: 40000, Message: message})
}

// withRand runs fn while holding the generator lock.
func (s *Server) withRand(fn func(rng *rand.Rand)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.rng)
}

func (s *Server) onlineUsers(w http.ResponseWriter, _ *http.Request) {
	var count int
	s.withRand(func(rng *rand.Rand) { count = 30 + rng.Intn(20) })
	ok(w, vitals.OnlineUserCount{Count: count})
}

var warningTypes = []string{"apnea", "tachycardia", "bradycardia", "arrhythmia", "left bed"}

func (s *Server) userWarnings(w http.ResponseWriter, r *http.Request) {
	n, err := strconv.Atoi(chi.URLParam(r, "n"))
	if err != nil || n < 0 {
		badRequest(w, "invalid warning count")
		return
	}
	now := s.now()
	out := make([]vitals.UserWarning, 0, n)
	s.withRand(func(rng *rand.Rand) {
		for i := 0; i < n; i++ {
			kind := warningTypes[rng.Intn(len(warningTypes))]
			out = append(out, vitals.UserWarning{
				ID:             i + 1,
				UserID:         strconv.Itoa(rng.Intn(8)),
				WarningType:    kind,
				WarningTime:    now.Add(-time.Duration(i*7) * time.Minute).Format("2006-01-02 15:04:05"),
				WarningContent: kind + " detected",
				IsProcessed:    rng.Intn(3) == 0,
			})
		}
	})
	ok(w, out)
}

func (s *Server) warningCount(w http.ResponseWriter, _ *http.Request) {
	var processed, unprocessed int
	s.withRand(func(rng *rand.Rand) {
		processed = 100 + rng.Intn(50)
		unprocessed = rng.Intn(20)
	})
	ok(w, vitals.WarningCount{Total: processed + unprocessed, Processed: processed, Unprocessed: unprocessed})
}

var cities = []string{"Beijing", "Shanghai", "Guangzhou", "Shenzhen", "Chengdu", "Hangzhou"}

func (s *Server) usersPerCity(w http.ResponseWriter, _ *http.Request) {
	out := make([]vitals.CityUserCount, 0, len(cities))
	s.withRand(func(rng *rand.Rand) {
		for _, city := range cities {
			out = append(out, vitals.CityUserCount{CityName: city, Count: 5 + rng.Intn(40)})
		}
	})
	ok(w, out)
}

func (s *Server) warningsPerDate(w http.ResponseWriter, _ *http.Request) {
	now := s.now()
	out := make([]vitals.DateWarningCount, 0, 7)
	s.withRand(func(rng *rand.Rand) {
		for i := 6; i >= 0; i-- {
			out = append(out, vitals.DateWarningCount{
				Date:  now.AddDate(0, 0, -i).Format("2006-01-02"),
				Count: rng.Intn(15),
			})
		}
	})
	ok(w, out)
}

func (s *Server) breathWaveform(w http.ResponseWriter, r *http.Request) {
	var wave []float64
	s.withRand(func(rng *rand.Rand) { wave = mock.Waveform(100, 25, 1, rng) })
	ok(w, vitals.BreathWaveform{UID: chi.URLParam(r, "uid"), BreathWaveform: wave, InBed: true})
}

func (s *Server) breathRing(w http.ResponseWriter, r *http.Request) {
	const points = 60
	xs := make([]float64, points)
	ys := make([]float64, points)
	s.withRand(func(rng *rand.Rand) {
		for i := range xs {
			angle := 2 * math.Pi * float64(i) / points
			radius := 1 + (rng.Float64()-0.5)*0.1
			xs[i] = radius * math.Cos(angle)
			ys[i] = radius * math.Sin(angle)
		}
	})
	ok(w, vitals.BreathRing{UID: chi.URLParam(r, "uid"), RingX: xs, RingY: ys})
}

func (s *Server) breathWarning(w http.ResponseWriter, r *http.Request) {
	var id int
	s.withRand(func(rng *rand.Rand) {
		if rng.Intn(10) == 0 {
			id = 1 + rng.Intn(3)
		}
	})
	ok(w, vitals.BreathWarning{UID: chi.URLParam(r, "uid"), WarningID: id})
}

func (s *Server) arrhythmiaWaveform(w http.ResponseWriter, r *http.Request) {
	var (
		wave []float64
		flag int
	)
	s.withRand(func(rng *rand.Rand) {
		wave = mock.Waveform(200, 20, 0.5, rng)
		if rng.Intn(8) == 0 {
			flag = 1
		}
	})
	ok(w, vitals.ArrhythmiaWaveform{UID: chi.URLParam(r, "uid"), SCGWaveform: wave, IsArrhythmia: flag, InBed: true})
}

func (s *Server) heartWaveform(w http.ResponseWriter, r *http.Request) {
	var series mock.HeartRateSeries
	now := s.now()
	s.withRand(func(rng *rand.Rand) { series = mock.HeartRate(now, rng) })
	ok(w, vitals.HeartRateWaveform{
		UID:           chi.URLParam(r, "uid"),
		HeartWaveform: series.HeartWaveform,
		InBed:         series.InBed,
		TimeStamp:     series.TimeStamp,
	})
}

func (s *Server) latestHeartRate(w http.ResponseWriter, r *http.Request) {
	var bpm float64
	s.withRand(func(rng *rand.Rand) { bpm = math.Round(65 + rng.Float64()*20) })
	ok(w, vitals.LatestHeartRate{
		UID:       chi.URLParam(r, "uid"),
		Timestamp: strconv.FormatInt(s.now().Unix(), 10),
		HeartRate: bpm,
	})
}

func (s *Server) stress(w http.ResponseWriter, r *http.Request) {
	var index float64
	s.withRand(func(rng *rand.Rand) { index = math.Round(rng.Float64()*1000) / 10 })
	ok(w, vitals.Stress{
		UID:         chi.URLParam(r, "uid"),
		Timestamp:   strconv.FormatInt(s.now().Unix(), 10),
		StressIndex: index,
		StressLevel: stressLevel(index),
	})
}

func stressLevel(index float64) string {
	switch {
	case index < 30:
		return "low"
	case index < 70:
		return "medium"
	default:
		return "high"
	}
}

func decodeHistory(w http.ResponseWriter, r *http.Request) (vitals.HistoryParams, bool) {
	var p vitals.HistoryParams
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		badRequest(w, fmt.Sprintf("invalid history params: %v", err))
		return p, false
	}
	if p.UID == "" {
		badRequest(w, "uid is required")
		return p, false
	}
	return p, true
}

func (s *Server) breathHistory(w http.ResponseWriter, r *http.Request) {
	p, valid := decodeHistory(w, r)
	if !valid {
		return
	}
	now := s.now()
	samples := make([]vitals.RespiratorySample, 0, 12)
	s.withRand(func(rng *rand.Rand) {
		for i := 11; i >= 0; i-- {
			samples = append(samples, vitals.RespiratorySample{
				Timestamp:       now.Add(-time.Duration(i*5) * time.Minute).Format("2006-01-02 15:04:05"),
				RespiratoryRate: math.Round(12 + rng.Float64()*8),
			})
		}
	})
	ok(w, vitals.BreathHistory{UID: p.UID, Data: samples})
}

func (s *Server) breathIndex(w http.ResponseWriter, r *http.Request) {
	p, valid := decodeHistory(w, r)
	if !valid {
		return
	}
	var index float64
	s.withRand(func(rng *rand.Rand) { index = math.Round(rng.Float64()*100) / 10 })
	ok(w, vitals.BreathIndex{UID: p.UID, BrIndex: index, Date: s.now().Format("2006-01-02")})
}

func (s *Server) heartHistory(w http.ResponseWriter, r *http.Request) {
	p, valid := decodeHistory(w, r)
	if !valid {
		return
	}
	var series mock.HeartRateSeries
	now := s.now()
	s.withRand(func(rng *rand.Rand) { series = mock.HeartRate(now, rng) })
	samples := make([]vitals.HeartSample, 0, len(series.HeartWaveform))
	for i, bpm := range series.HeartWaveform {
		samples = append(samples, vitals.HeartSample{
			Timestamp: time.Unix(series.TimeStamp[i], 0).Format("2006-01-02 15:04:05"),
			HeartRate: bpm,
		})
	}
	ok(w, vitals.HeartHistory{UID: p.UID, Data: samples})
}

func (s *Server) hrvHistory(w http.ResponseWriter, r *http.Request) {
	p, valid := decodeHistory(w, r)
	if !valid {
		return
	}
	var series mock.HRVSeries
	now := s.now()
	s.withRand(func(rng *rand.Rand) { series = mock.HRV(now, rng) })
	ok(w, vitals.HRVHistory{UID: p.UID, InBed: true, TimeStamp: series.Timestamps, HRVData: series.Values})
}

func (s *Server) heartStat(w http.ResponseWriter, r *http.Request) {
	p, valid := decodeHistory(w, r)
	if !valid {
		return
	}
	var lo, hi float64
	s.withRand(func(rng *rand.Rand) {
		lo = math.Round(50 + rng.Float64()*10)
		hi = math.Round(100 + rng.Float64()*20)
	})
	ok(w, vitals.HeartStat{
		UID:          p.UID,
		MinHeartRate: lo,
		MaxHeartRate: hi,
		AvgHeartRate: math.Round((lo + hi) / 2),
		Date:         s.now().Format("2006-01-02"),
	})
}

func (s *Server) arrhythmiaCounts(w http.ResponseWriter, r *http.Request) {
	p, valid := decodeHistory(w, r)
	if !valid {
		return
	}
	now := s.now()
	counts := make([]vitals.ArrhythmiaDayCount, 0, 7)
	total := 0
	s.withRand(func(rng *rand.Rand) {
		for i := 6; i >= 0; i-- {
			c := rng.Intn(5)
			total += c
			counts = append(counts, vitals.ArrhythmiaDayCount{Date: now.AddDate(0, 0, -i).Format("2006-01-02"), Count: c})
		}
	})
	ok(w, vitals.ArrhythmiaCounts{UID: p.UID, Counts: counts, TotalCount: total})
}
