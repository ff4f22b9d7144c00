package kmetrics

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/xinkaiwang/rtsplanner/libs/xklib/kerror"
	"go.opencensus.io/metric/metricdata"
	"go.opencensus.io/metric/metricproducer"
)

// KmetricsRegistry implements metricproducer.Producer.
type KmetricsRegistry struct {
	mu         sync.Mutex
	collection unsafe.Pointer
	globalTags map[string]string
	// tagName -> metric name, to detect conflicts with globalTags
	allTagNames map[string]string
}

func NewKmetricsRegistry() *KmetricsRegistry {
	return &KmetricsRegistry{
		collection:  unsafe.Pointer(CreateKmetricsCollection()),
		globalTags:  make(map[string]string),
		allTagNames: make(map[string]string),
	}
}

// RegisterKmetric panics if km uses a global tag name. Re-registering a name replaces the old metric.
func (registry *KmetricsRegistry) RegisterKmetric(km *Kmetric) {
	registry.mu.Lock()
	defer registry.mu.Unlock()

	for _, tagName := range km.tagNames {
		if _, exists := registry.globalTags[tagName]; exists {
			panic(kerror.Create("TagNameConflict", "metric tag conflicts with a global tag").With("tagName", tagName).With("metric", km.metricName))
		}
		registry.allTagNames[tagName] = km.metricName
	}

	oldCollection := (*KmetricsCollection)(atomic.LoadPointer(&registry.collection))
	newCollection := oldCollection.Clone()
	newCollection.dict[km.metricName] = km
	atomic.StorePointer(&registry.collection, unsafe.Pointer(newCollection))
}

// Read returns all registered metrics, ordered by name.
func (registry *KmetricsRegistry) Read() []*metricdata.Metric {
	collection := (*KmetricsCollection)(atomic.LoadPointer(&registry.collection))
	names := make([]string, 0, len(collection.dict))
	for k := range collection.dict {
		names = append(names, k)
	}
	sort.Strings(names)
	registry.mu.Lock()
	defer registry.mu.Unlock()
	list := []*metricdata.Metric{}
	for _, name := range names {
		v := collection.dict[name]
		list = append(list, registry.attachGlobalTags(v.ReadCount()))
		if !v.countOnly {
			list = append(list, registry.attachGlobalTags(v.ReadSum()))
		}
	}
	return list
}

func (registry *KmetricsRegistry) attachGlobalTags(metric *metricdata.Metric) *metricdata.Metric {
	keys := make([]string, 0, len(registry.globalTags))
	for k := range registry.globalTags {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, key := range keys {
		metric.Descriptor.LabelKeys = append(metric.Descriptor.LabelKeys, metricdata.LabelKey{Key: key})
		for _, ts := range metric.TimeSeries {
			ts.LabelValues = append(ts.LabelValues, metricdata.NewLabelValue(registry.globalTags[key]))
		}
	}
	return metric
}

func (registry *KmetricsRegistry) AddGlobalTag(key, value string) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	if metricName, exists := registry.allTagNames[key]; exists {
		panic(kerror.Create("TagNameConflict", "global tag name conflicts with an existing metric tag").With("tagName", key).With("metric", metricName))
	}
	registry.globalTags[key] = value
}

// KmetricsCollection is immutable.
type KmetricsCollection struct {
	dict map[string]*Kmetric
}

func CreateKmetricsCollection() *KmetricsCollection {
	return &KmetricsCollection{
		dict: make(map[string]*Kmetric),
	}
}

func (collection *KmetricsCollection) Clone() *KmetricsCollection {
	newCollection := CreateKmetricsCollection()
	for k, v := range collection.dict {
		newCollection.dict[k] = v
	}
	return newCollection
}

var (
	kmetricsRegistry = NewKmetricsRegistry()
	registerOnce     sync.Once
)

func GetKmetricsRegistry() *KmetricsRegistry {
	return kmetricsRegistry
}

// RegisterGlobalProducer adds the registry to the opencensus global producer manager (once).
func RegisterGlobalProducer() {
	registerOnce.Do(func() {
		metricproducer.GlobalManager().AddProducer(kmetricsRegistry)
	})
}

// DumpText writes every metric of every globally registered producer, one line per time series:
// name{k=v,...} value
func DumpText(w io.Writer) error {
	var lines []string
	for _, producer := range metricproducer.GlobalManager().GetAll() {
		for _, m := range producer.Read() {
			lines = append(lines, FormatMetric(m)...)
		}
	}
	sort.Strings(lines)
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return kerror.Wrap(err, "DumpMetricsFailed", "", false)
		}
	}
	return nil
}

func FormatMetric(m *metricdata.Metric) []string {
	lines := make([]string, 0, len(m.TimeSeries))
	for _, ts := range m.TimeSeries {
		labels := make([]string, 0, len(ts.LabelValues))
		for i, lv := range ts.LabelValues {
			if i < len(m.Descriptor.LabelKeys) && lv.Present {
				labels = append(labels, m.Descriptor.LabelKeys[i].Key+"="+lv.Value)
			}
		}
		var value interface{}
		if len(ts.Points) > 0 {
			value = ts.Points[len(ts.Points)-1].Value
		}
		lines = append(lines, fmt.Sprintf("%s{%s} %v", m.Descriptor.Name, strings.Join(labels, ","), value))
	}
	return lines
}
