package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/campusware/regpos/internal/pos"
	"github.com/campusware/regpos/internal/registry"
	"github.com/campusware/regpos/internal/worker"
)

// Population identifies one upstream cohort and the POS customer type its
// members are filed under.
type Population struct {
	Name         string
	Resource     string
	CustomerType string
	Params       url.Values
}

var (
	PopulationStudents = Population{
		Name:         "students",
		Resource:     "students",
		CustomerType: "Student",
		Params:       url.Values{"option": {"2"}},
	}
	PopulationFacStaff = Population{
		Name:         "facstaff",
		Resource:     "facstaff",
		CustomerType: "FacStaff",
		Params:       url.Values{"roles": {"1,2"}},
	}
)

// SyncOptions narrows and tunes a reconciliation run.
type SyncOptions struct {
	Population   Population
	UpdatedAfter string // yyyy-mm-dd, empty for full pull
	GradeLevel   string // students only; "Other" expands to the non-grade codes
	Force        bool
}

// SyncResult tallies per-record outcomes of a run.
type SyncResult struct {
	Created  int
	Updated  int
	UpToDate int
	Failed   int
}

func (r SyncResult) String() string {
	return fmt.Sprintf("created %d, updated %d, up to date %d, failed %d",
		r.Created, r.Updated, r.UpToDate, r.Failed)
}

// SyncService reconciles upstream people into POS customer records.
type SyncService struct {
	registry RegistryAPI
	pos      POSAPI
	mapper   MapperConfig
	workers  int
	sink     Sink
}

func NewSyncService(reg RegistryAPI, posAPI POSAPI, mapper MapperConfig, workers int, sink Sink) *SyncService {
	if workers < 1 {
		workers = 1
	}
	if sink == nil {
		sink = NopSink{}
	}
	return &SyncService{registry: reg, pos: posAPI, mapper: mapper, workers: workers, sink: sink}
}

// WithSink returns a copy of the service reporting to sink. The caller's
// service is untouched, so concurrent runs keep separate outputs.
func (s *SyncService) WithSink(sink Sink) *SyncService {
	out := *s
	if sink == nil {
		sink = NopSink{}
	}
	out.sink = sink
	return &out
}

// otherGrades covers the placeholder grade codes used for pre-enrollment and
// special cohorts.
func otherGrades() string {
	codes := make([]string, 0, 10)
	for g := 20; g <= 29; g++ {
		codes = append(codes, fmt.Sprint(g))
	}
	return strings.Join(codes, ",")
}

func pullParams(opts SyncOptions) url.Values {
	params := url.Values{}
	for k, vs := range opts.Population.Params {
		for _, v := range vs {
			params.Add(k, v)
		}
	}
	if opts.UpdatedAfter != "" {
		params.Set("updated_after", opts.UpdatedAfter)
	}
	if opts.GradeLevel != "" && opts.Population.Name == PopulationStudents.Name {
		grade := opts.GradeLevel
		if grade == "Other" {
			grade = otherGrades()
		}
		params.Set("grade_level", grade)
	}
	return params
}

// Run pulls the selected population and reconciles each person against the
// POS: create when absent, update when the comparable projection differs,
// leave alone otherwise. Records fail individually; the run continues.
func (s *SyncService) Run(ctx context.Context, opts SyncOptions) (SyncResult, error) {
	if s.mapper.PersonFieldID == "" || s.mapper.SyncTimeFieldID == "" {
		return SyncResult{}, errors.New("custom field ids not configured; set sync.customfield_person_id and sync.customfield_sync_time")
	}

	lookups, err := LoadLookups(ctx, s.pos)
	if err != nil {
		return SyncResult{}, err
	}
	typeID, err := lookups.CustomerTypeID(opts.Population.CustomerType)
	if err != nil {
		return SyncResult{}, err
	}
	mapper := s.mapper
	mapper.CustomerTypeID = typeID

	people, err := s.registry.Pull(ctx, opts.Population.Resource, pullParams(opts))
	if err != nil {
		return SyncResult{}, fmt.Errorf("pull %s: %w", opts.Population.Name, err)
	}
	s.sink.Log(LevelInfo, fmt.Sprintf("pulled %d %s records", len(people), opts.Population.Name))

	var (
		result SyncResult
		pool   = worker.NewPool(s.workers)
		done   = make(chan string, len(people))
	)
	for _, p := range people {
		person := p
		pool.Run(func() {
			outcome := s.syncOne(ctx, person, mapper, opts.Force)
			done <- outcome
		})
	}
	go func() {
		pool.Wait()
		close(done)
	}()

	processed := 0
	for outcome := range done {
		processed++
		switch outcome {
		case "created":
			result.Created++
		case "updated":
			result.Updated++
		case "uptodate":
			result.UpToDate++
		default:
			result.Failed++
		}
		if len(people) > 0 {
			s.sink.Notify(processed * 100 / len(people))
		}
	}
	s.sink.Log(LevelInfo, fmt.Sprintf("sync %s: %s", opts.Population.Name, result))
	return result, nil
}

func (s *SyncService) syncOne(ctx context.Context, p registry.Person, mapper MapperConfig, force bool) string {
	existing, err := Match(ctx, s.pos, p.PersonPK)
	if err != nil {
		// degrade to create; a missed match at worst duplicates a record,
		// a halted run syncs nothing
		s.sink.Log(LevelWarn, fmt.Sprintf("person %d: %v; treating as new", p.PersonPK, err))
		existing = nil
	}

	household, err := s.registry.Household(ctx, p.HouseholdFK)
	if err != nil {
		s.sink.Log(LevelError, fmt.Sprintf("person %d: household %d: %v", p.PersonPK, p.HouseholdFK, err))
		return "failed"
	}

	mapped := MapCustomer(p, household, mapper, time.Now())

	if existing == nil {
		if _, err := s.pos.CreateCustomer(ctx, mapped); err != nil {
			s.sink.Log(LevelError, fmt.Sprintf("person %d: create: %v", p.PersonPK, err))
			return "failed"
		}
		s.sink.Log(LevelInfo, fmt.Sprintf("person %d: created %s %s", p.PersonPK, mapped.FirstName, mapped.LastName))
		return "created"
	}

	if !Differ(FromUpstream(p, household), FromCustomer(*existing), force) {
		s.sink.Log(LevelDebug, fmt.Sprintf("person %d: up to date", p.PersonPK))
		return "uptodate"
	}
	if _, err := s.pos.UpdateCustomer(ctx, existing.CustomerID, mapped); err != nil {
		s.sink.Log(LevelError, fmt.Sprintf("person %d: update customer %s: %v", p.PersonPK, existing.CustomerID, err))
		return "failed"
	}
	s.sink.Log(LevelInfo, fmt.Sprintf("person %d: updated customer %s", p.PersonPK, existing.CustomerID))
	return "updated"
}

// SweepOptions controls the stale-record sweep.
type SweepOptions struct {
	Simulate bool
}

// SweepResult tallies the sweep outcomes.
type SweepResult struct {
	Deleted int
	Skipped int
	Kept    int
}

func (r SweepResult) String() string {
	return fmt.Sprintf("deleted %d, skipped %d, kept %d", r.Deleted, r.Skipped, r.Kept)
}

// DeleteSweep removes POS customers whose person key no longer appears in
// either upstream population. A customer carrying a balance is never deleted,
// only reported. Simulate mode logs every would-be deletion without touching
// the POS.
func (s *SyncService) DeleteSweep(ctx context.Context, opts SweepOptions) (SweepResult, error) {
	valid := map[string]bool{}
	for _, population := range []Population{PopulationStudents, PopulationFacStaff} {
		people, err := s.registry.Pull(ctx, population.Resource, pullParams(SyncOptions{Population: population}))
		if err != nil {
			return SweepResult{}, fmt.Errorf("pull %s: %w", population.Name, err)
		}
		for _, p := range people {
			valid[fmt.Sprint(p.PersonPK)] = true
		}
	}
	s.sink.Log(LevelInfo, fmt.Sprintf("sweep: %d valid person keys", len(valid)))

	customers, err := s.pos.Customers(ctx, url.Values{"load_relations": {"all"}})
	if err != nil {
		return SweepResult{}, fmt.Errorf("list customers: %w", err)
	}

	// deterministic order for the log
	sort.Slice(customers, func(i, j int) bool { return customers[i].CustomerID < customers[j].CustomerID })

	var result SweepResult
	for _, cust := range customers {
		if cust.CompanyRegistrationNumber == "" || valid[cust.CompanyRegistrationNumber] {
			result.Kept++
			continue
		}
		balance := customerBalance(cust)
		if balance.IsPositive() {
			result.Skipped++
			s.sink.Log(LevelWarn, fmt.Sprintf("sweep: customer %s (%s %s) has balance %s, skipping",
				cust.CustomerID, cust.FirstName, cust.LastName, balance.StringFixed(2)))
			continue
		}
		if opts.Simulate {
			result.Deleted++
			s.sink.Log(LevelInfo, fmt.Sprintf("sweep: would delete customer %s (%s %s)",
				cust.CustomerID, cust.FirstName, cust.LastName))
			continue
		}
		if err := s.pos.DeleteCustomer(ctx, cust.CustomerID); err != nil {
			result.Skipped++
			s.sink.Log(LevelError, fmt.Sprintf("sweep: delete customer %s: %v", cust.CustomerID, err))
			continue
		}
		result.Deleted++
		s.sink.Log(LevelInfo, fmt.Sprintf("sweep: deleted customer %s (%s %s)",
			cust.CustomerID, cust.FirstName, cust.LastName))
	}
	s.sink.Log(LevelInfo, "sweep: "+result.String())
	return result, nil
}

func customerBalance(c pos.Customer) decimal.Decimal {
	if c.CreditAccount == nil || c.CreditAccount.Balance == "" {
		return decimal.Zero
	}
	balance, err := decimal.NewFromString(c.CreditAccount.Balance)
	if err != nil {
		return decimal.Zero
	}
	return balance
}
