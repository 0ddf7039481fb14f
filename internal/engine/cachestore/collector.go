package cachestore

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	hitsDesc = prometheus.NewDesc(
		"estatedesk_cache_hits_total", "Cache lookups served from a populated slot.", nil, nil)
	missesDesc = prometheus.NewDesc(
		"estatedesk_cache_misses_total", "Cache lookups that found no slot.", nil, nil)
	setsDesc = prometheus.NewDesc(
		"estatedesk_cache_sets_total", "Slots written.", nil, nil)
	clearsDesc = prometheus.NewDesc(
		"estatedesk_cache_clears_total", "Slots invalidated.", nil, nil)
	entriesDesc = prometheus.NewDesc(
		"estatedesk_cache_entries", "Populated slots.", nil, nil)
	itemsDesc = prometheus.NewDesc(
		"estatedesk_cache_slot_items", "Rows held by a slot.", []string{"resource"}, nil)
	ageDesc = prometheus.NewDesc(
		"estatedesk_cache_slot_age_seconds", "Seconds since a slot was filled.", []string{"resource"}, nil)
)

// Describe implements prometheus.Collector.
func (s *Store) Describe(ch chan<- *prometheus.Desc) {
	ch <- hitsDesc
	ch <- missesDesc
	ch <- setsDesc
	ch <- clearsDesc
	ch <- entriesDesc
	ch <- itemsDesc
	ch <- ageDesc
}

// Collect implements prometheus.Collector.
func (s *Store) Collect(ch chan<- prometheus.Metric) {
	stats := s.Stats()
	ch <- prometheus.MustNewConstMetric(hitsDesc, prometheus.CounterValue, float64(stats.Hits))
	ch <- prometheus.MustNewConstMetric(missesDesc, prometheus.CounterValue, float64(stats.Misses))
	ch <- prometheus.MustNewConstMetric(setsDesc, prometheus.CounterValue, float64(stats.Sets))
	ch <- prometheus.MustNewConstMetric(clearsDesc, prometheus.CounterValue, float64(stats.Clears))
	ch <- prometheus.MustNewConstMetric(entriesDesc, prometheus.GaugeValue, float64(stats.Entries))

	now := s.now()
	for _, info := range s.Info() {
		ch <- prometheus.MustNewConstMetric(itemsDesc, prometheus.GaugeValue, float64(info.Items), string(info.Key))
		ch <- prometheus.MustNewConstMetric(ageDesc, prometheus.GaugeValue, now.Sub(info.FetchedAt).Seconds(), string(info.Key))
	}
}

var _ prometheus.Collector = (*Store)(nil)
