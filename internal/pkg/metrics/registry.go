package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const defaultServiceName = "arena"

// Identity 进程级指标标签：service 为服务类型，instance 为 mqant 模块实例 ID（可为空）
type Identity struct {
	Service  string
	Instance string
}

// 指标构造时读取一次，之后修改不影响已创建的指标
var (
	stateMu    sync.RWMutex
	registerer prometheus.Registerer = prometheus.DefaultRegisterer
	identity                         = Identity{Service: defaultServiceName}
)

// SetRegisterer 设置默认 Registerer（nil 恢复为 prometheus.DefaultRegisterer）。
func SetRegisterer(r prometheus.Registerer) {
	if r == nil {
		r = prometheus.DefaultRegisterer
	}
	stateMu.Lock()
	registerer = r
	stateMu.Unlock()
}

// GetRegisterer 返回当前的 Registerer。
func GetRegisterer() prometheus.Registerer {
	stateMu.RLock()
	defer stateMu.RUnlock()
	return registerer
}

// SetIdentity 同一 Prometheus 抓取多个竞技场实例时用 instance 区分
func SetIdentity(id Identity) {
	if id.Service == "" {
		id.Service = defaultServiceName
	}
	stateMu.Lock()
	identity = id
	stateMu.Unlock()
}

// GetIdentity 返回当前的指标标识
func GetIdentity() Identity {
	stateMu.RLock()
	defer stateMu.RUnlock()
	return identity
}

// ConstLabels 由当前标识生成固定标签；instance 为空时不带该标签
func ConstLabels() prometheus.Labels {
	id := GetIdentity()
	labels := prometheus.Labels{"service": id.Service}
	if id.Instance != "" {
		labels["arena_instance"] = id.Instance
	}
	return labels
}
