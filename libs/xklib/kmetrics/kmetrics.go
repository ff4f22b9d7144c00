package kmetrics

import (
	"context"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"
	"unsafe"

	"github.com/xinkaiwang/rtsplanner/libs/xklib/kerror"
	"go.opencensus.io/metric/metricdata"
	"go.opencensus.io/resource"
)

// Kmetric is one counter family. It produces "<name>_count" and (unless CountOnly) "<name>_sum",
// with one time sequence per distinct tag value combination.
type Kmetric struct {
	mu          sync.Mutex // only held when adding a TimeSequence
	metricName  string
	description string
	tagNames    []string
	collection  unsafe.Pointer
	startTime   time.Time
	countOnly   bool
}

func CreateKmetric(ctx context.Context, name string, description string, tags []string) *Kmetric {
	km := &Kmetric{
		metricName:  name,
		description: description,
		tagNames:    tags,
		startTime:   time.Now(),
	}
	km.collection = unsafe.Pointer(CreateTimeSequenceCollection(km))
	GetKmetricsRegistry().RegisterKmetric(km)
	return km
}

func (km *Kmetric) CountOnly() *Kmetric {
	km.countOnly = true
	return km
}

func (km *Kmetric) Name() string {
	return km.metricName
}

func makeSequenceKey(tags ...string) string {
	return strings.Join(tags, "-")
}

// GetTimeSequence: tags must match tagNames in length and order.
func (m *Kmetric) GetTimeSequence(ctx context.Context, tags ...string) *TimeSequence {
	key := makeSequenceKey(tags...)
	collection := (*TimeSequenceCollection)(atomic.LoadPointer(&m.collection))
	if sequence, ok := collection.dict[key]; ok {
		return sequence
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	collection = (*TimeSequenceCollection)(atomic.LoadPointer(&m.collection))
	if sequence, ok := collection.dict[key]; ok {
		return sequence
	}

	newCollection := CreateTimeSequenceCollection(m)
	for k, v := range collection.dict {
		newCollection.dict[k] = v
	}
	newTimeSequence := CreateTimeSequence(key, m, tags)
	newCollection.dict[key] = newTimeSequence
	atomic.StorePointer(&m.collection, unsafe.Pointer(newCollection))
	return newTimeSequence
}

func (m *Kmetric) ReadSum() *metricdata.Metric {
	return m.read("_sum", (*TimeSequence).ReadSum)
}

func (m *Kmetric) ReadCount() *metricdata.Metric {
	return m.read("_count", (*TimeSequence).ReadCount)
}

func (m *Kmetric) read(suffix string, readFn func(*TimeSequence) *metricdata.TimeSeries) *metricdata.Metric {
	keys := make([]metricdata.LabelKey, len(m.tagNames))
	for i, tagName := range m.tagNames {
		keys[i] = metricdata.LabelKey{Key: tagName}
	}
	collection := (*TimeSequenceCollection)(atomic.LoadPointer(&m.collection))
	seqKeys := make([]string, 0, len(collection.dict))
	for k := range collection.dict {
		seqKeys = append(seqKeys, k)
	}
	sort.Strings(seqKeys)
	timeSeries := make([]*metricdata.TimeSeries, 0, len(seqKeys))
	for _, k := range seqKeys {
		timeSeries = append(timeSeries, readFn(collection.dict[k]))
	}
	return &metricdata.Metric{
		Descriptor: metricdata.Descriptor{
			Name:        m.metricName + suffix,
			Description: m.description,
			Unit:        metricdata.UnitDimensionless,
			Type:        metricdata.TypeCumulativeInt64,
			LabelKeys:   keys,
		},
		Resource: &resource.Resource{
			Type:   "rtsplanner",
			Labels: map[string]string{},
		},
		TimeSeries: timeSeries,
	}
}

// TimeSequenceCollection is immutable; adding a sequence swaps in a new collection.
type TimeSequenceCollection struct {
	parent *Kmetric
	dict   map[string]*TimeSequence
}

func CreateTimeSequenceCollection(parent *Kmetric) *TimeSequenceCollection {
	return &TimeSequenceCollection{
		parent: parent,
		dict:   map[string]*TimeSequence{},
	}
}

// TimeSequence is one tag value combination of a Kmetric.
type TimeSequence struct {
	parent      *Kmetric
	key         string
	tagValues   []string
	labelValues []metricdata.LabelValue
	count       int64
	sum         int64
}

func CreateTimeSequence(key string, parent *Kmetric, tagValues []string) *TimeSequence {
	if len(tagValues) != len(parent.tagNames) {
		panic(kerror.Create("InvalidTagValues", "number of tag values does not match tag name list").
			With("metric", parent.metricName).
			With("expectedLen", len(parent.tagNames)).
			With("gotLen", len(tagValues)).
			WithErrorCode(kerror.EC_INVALID_PARAMETER))
	}
	values := make([]metricdata.LabelValue, len(tagValues))
	for i, item := range tagValues {
		values[i] = metricdata.NewLabelValue(item)
	}
	return &TimeSequence{
		parent:      parent,
		key:         key,
		tagValues:   tagValues,
		labelValues: values,
	}
}

func (ts *TimeSequence) Add(val int64) {
	atomic.AddInt64(&ts.count, 1)
	atomic.AddInt64(&ts.sum, val)
}

func (ts *TimeSequence) Get() (count int64, sum int64) {
	return atomic.LoadInt64(&ts.count), atomic.LoadInt64(&ts.sum)
}

func (ts *TimeSequence) ReadSum() *metricdata.TimeSeries {
	return ts.point(atomic.LoadInt64(&ts.sum))
}

func (ts *TimeSequence) ReadCount() *metricdata.TimeSeries {
	return ts.point(atomic.LoadInt64(&ts.count))
}

func (ts *TimeSequence) point(v int64) *metricdata.TimeSeries {
	return &metricdata.TimeSeries{
		LabelValues: ts.labelValues,
		Points:      []metricdata.Point{metricdata.NewInt64Point(time.Now(), v)},
		StartTime:   ts.parent.startTime,
	}
}
