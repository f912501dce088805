package testtypes

import (
	"context"
	"reflect"
	"sync"
	"sync/atomic"
)

var (
	TypeStore     = reflect.TypeFor[*Store]()
	TypeClock     = reflect.TypeFor[*Clock]()
	TypeReportJob = reflect.TypeFor[*ReportJob]()
	TypeMailer    = reflect.TypeFor[Mailer]()
	TypeSMTP      = reflect.TypeFor[*SMTPMailer]()
	TypePlainJob  = reflect.TypeFor[*PlainJob]()
	TypeResource  = reflect.TypeFor[*Resource]()
)

// CloseLog records the order services were closed in.
type CloseLog struct {
	mu    sync.Mutex
	names []string
}

func (l *CloseLog) Add(name string) {
	if l == nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.names = append(l.names, name)
}

// NoLog returns a nil *CloseLog for services whose close order is not checked.
func NoLog() *CloseLog {
	return nil
}

func (l *CloseLog) Names() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.names...)
}

// Resource is a disposable with a Close(context.Context) error method.
type Resource struct {
	Name   string
	Log    *CloseLog
	Err    error
	closed atomic.Int32
}

func (r *Resource) Close(context.Context) error {
	r.closed.Add(1)
	r.Log.Add(r.Name)
	return r.Err
}

// Closed returns the number of times Close was called.
func (r *Resource) Closed() int {
	return int(r.closed.Load())
}

// Store is a typical per-job dependency.
type Store struct {
	Resource
}

func NewStore(log *CloseLog) *Store {
	return &Store{Resource{Name: "store", Log: log}}
}

// Clock is a typical process-wide dependency.
type Clock struct {
	Resource
}

func NewClock(log *CloseLog) *Clock {
	return &Clock{Resource{Name: "clock", Log: log}}
}

// Mailer is an interface dependency.
type Mailer interface {
	Send(to string) error
}

// SMTPMailer closes with a Close() error method.
type SMTPMailer struct {
	closed atomic.Int32
}

func (*SMTPMailer) Send(string) error { return nil }

func (m *SMTPMailer) Close() error {
	m.closed.Add(1)
	return nil
}

func (m *SMTPMailer) Closed() int {
	return int(m.closed.Load())
}

func NewMailer() Mailer {
	return &SMTPMailer{}
}

// ReportJob is a job with scoped and singleton dependencies.
type ReportJob struct {
	Store  *Store
	Clock  *Clock
	Mailer Mailer
	Runs   int
	Err    error
}

func NewReportJob(store *Store, clock *Clock, mailer Mailer) *ReportJob {
	return &ReportJob{Store: store, Clock: clock, Mailer: mailer}
}

func (j *ReportJob) Perform(context.Context) error {
	j.Runs++
	return j.Err
}

// PlainJob has no dependencies and can be built by reflection.
type PlainJob struct {
	closed      atomic.Int32
	initialized bool
}

func (j *PlainJob) Init(context.Context) error {
	j.initialized = true
	return nil
}

func (j *PlainJob) Initialized() bool {
	return j.initialized
}

func (j *PlainJob) Close() {
	j.closed.Add(1)
}

func (j *PlainJob) Closed() int {
	return int(j.closed.Load())
}

func (*PlainJob) Perform(context.Context) error {
	return nil
}

// NotAJob does not implement Perform.
type NotAJob struct{}
