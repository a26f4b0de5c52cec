package dispatch

import (
	"testing"

	"holter-distributor/internal/config"
	"holter-distributor/internal/domain"
	"holter-distributor/internal/storage"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

func TestEvaluate(t *testing.T) {
	item := domain.NewWorkItem("/in/AB123.zhr")

	tests := []struct {
		name   string
		worker domain.Worker
		today  []string
		want   Veto
	}{
		{
			name:   "eligible unlimited worker",
			worker: domain.Worker{IsWorking: true, DailyLimit: domain.Unlimited},
			want:   VetoNone,
		},
		{
			name:   "not working",
			worker: domain.Worker{IsWorking: false, DailyLimit: domain.Unlimited},
			want:   VetoNotWorking,
		},
		{
			name:   "day off",
			worker: domain.Worker{IsWorking: true, DailyLimit: domain.Unlimited, DaysOff: map[string]bool{testDay: true}},
			want:   VetoDayOff,
		},
		{
			name:   "other day off does not apply",
			worker: domain.Worker{IsWorking: true, DailyLimit: domain.Unlimited, DaysOff: map[string]bool{"11.03.2026": true}},
			want:   VetoNone,
		},
		{
			name:   "skipped station",
			worker: domain.Worker{IsWorking: true, DailyLimit: domain.Unlimited, SkipStations: map[string]bool{"AB": true}},
			want:   VetoSkipStation,
		},
		{
			name:   "daily limit reached",
			worker: domain.Worker{IsWorking: true, DailyLimit: 2},
			today:  []string{"X1.zhr", "X2.zhr"},
			want:   VetoDailyLimit,
		},
		{
			name:   "zero limit takes nothing",
			worker: domain.Worker{IsWorking: true, DailyLimit: 0},
			want:   VetoDailyLimit,
		},
		{
			name:   "below daily limit",
			worker: domain.Worker{IsWorking: true, DailyLimit: 3},
			today:  []string{"X1.zhr", "X2.zhr"},
			want:   VetoNone,
		},
		{
			name: "station limit reached",
			worker: domain.Worker{
				IsWorking: true, DailyLimit: domain.Unlimited,
				LimitKey: domain.StationLimitKeyStation, StationLimits: map[string]int{"AB": 1},
			},
			today: []string{"ab999.zhr", "CD1.zhr"},
			want:  VetoStationLimit,
		},
		{
			name: "station limit counts only the same station",
			worker: domain.Worker{
				IsWorking: true, DailyLimit: domain.Unlimited,
				LimitKey: domain.StationLimitKeyStation, StationLimits: map[string]int{"AB": 1},
			},
			today: []string{"CD1.zhr", "CD2.zhr"},
			want:  VetoNone,
		},
		{
			name: "item name keyed limit does not match a station key",
			worker: domain.Worker{
				IsWorking: true, DailyLimit: domain.Unlimited,
				LimitKey: domain.StationLimitKeyItemName, StationLimits: map[string]int{"AB": 0},
			},
			want: VetoNone,
		},
		{
			name: "item name keyed limit matches the full name",
			worker: domain.Worker{
				IsWorking: true, DailyLimit: domain.Unlimited,
				LimitKey: domain.StationLimitKeyItemName, StationLimits: map[string]int{"AB123.ZHR": 1},
			},
			today: []string{"AB000.zhr"},
			want:  VetoStationLimit,
		},
		{
			name:   "flags veto before load",
			worker: domain.Worker{IsWorking: false, DailyLimit: 0},
			want:   VetoNotWorking,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := tt.worker
			require.Equal(t, tt.want, Evaluate(&w, item, testDay, tt.today))
		})
	}
}

func TestEvaluator_ScansFolderEveryCall(t *testing.T) {
	fsys := afero.NewMemMapFs()
	policy := testPolicy(config.DoctorConfig{Name: "Doc", FolderName: "doc", Limit: intPtr(1)})
	roster := NewRoster(policy)
	ev := NewEvaluator(storage.New(fsys), roster, testDay, discardLogger())
	doc := roster.Workers()[0]
	item := domain.NewWorkItem("/in/AB1.zhr")

	ok, load := ev.Eligible(doc, item)
	require.True(t, ok)
	require.Equal(t, 0, load)

	// Someone else files an item for today; the next check must see it.
	touch(t, fsys, "/out/doc/"+testDay+"/ZZ9.zhr")

	ok, _ = ev.Eligible(doc, item)
	require.False(t, ok)
}

func TestEvaluator_UnreadableFolderIsIneligible(t *testing.T) {
	fsys := &faultyFs{Fs: afero.NewMemMapFs(), failOpen: []string{"/out/doc"}}
	touch(t, fsys.Fs, "/out/doc/"+testDay+"/AB0.zhr")
	policy := testPolicy(
		config.DoctorConfig{Name: "Doc", FolderName: "doc"},
		config.DoctorConfig{Name: "Other", FolderName: "other"},
	)
	roster := NewRoster(policy)
	ev := NewEvaluator(storage.New(fsys), roster, testDay, discardLogger())

	candidates := ev.Candidates(domain.NewWorkItem("/in/AB1.zhr"))
	require.Len(t, candidates, 1)
	require.Equal(t, "Other", candidates[0].Worker.Name)
}

func TestEvaluator_Candidates(t *testing.T) {
	fsys := afero.NewMemMapFs()
	touch(t, fsys, "/out/b/"+testDay+"/X1.zhr")
	touch(t, fsys, "/out/b/"+testDay+"/X2.zhr")
	touch(t, fsys, "/out/b/09.03.2026/X0.zhr")

	policy := testPolicy(
		config.DoctorConfig{Name: "A", FolderName: "a", IsWorking: boolPtr(false)},
		config.DoctorConfig{Name: "B", FolderName: "b"},
		config.DoctorConfig{Name: "C", FolderName: "c", SkipStations: []string{"ab"}},
	)
	roster := NewRoster(policy)
	ev := NewEvaluator(storage.New(fsys), roster, testDay, discardLogger())

	candidates := ev.Candidates(domain.NewWorkItem("/in/AB1.zhr"))
	require.Len(t, candidates, 1)
	require.Equal(t, "B", candidates[0].Worker.Name)
	require.Equal(t, 2, candidates[0].Load)
}
