package engine

import (
	"fmt"
	"io"

	"github.com/bytedance/sonic/decoder"
	"go.uber.org/zap"

	"github.com/loomui/loom/internal/shared/types"
)

// MaterializeChannel handles an inbound child-channel open: it decodes the
// creation record from the channel's pending data, builds the widget, and
// registers its node. The returned channel id is the widget's own handle,
// which the transport binds so downstream messages route to the widget.
//
// Any failure here is a protocol or registration mismatch between producer
// and consumer: it is logged with full context and returned so the caller
// fails the channel instead of dropping the error.
func (e *Engine) MaterializeChannel(channelID types.ChannelID, globalID types.GlobalID, reader io.Reader) (types.ChannelID, error) {
	var record types.CreateWidget
	dec := decoder.NewStreamDecoder(reader)
	if err := dec.Decode(&record); err != nil {
		e.log.Error("malformed creation record",
			zap.Int32("channel_id", int32(channelID)),
			zap.Int64("global_id", int64(globalID)),
			zap.Error(err))
		return 0, fmt.Errorf("decode creation record on channel %d: %w", channelID, err)
	}

	w, err := e.registry.Build(record.ClassID, record.WidgetID, channelID, globalID, reader)
	if err != nil {
		name, _ := e.registry.ClassName(record.ClassID)
		e.log.Error("widget materialization failed",
			zap.String("class_name", name),
			zap.Int32("class_id", int32(record.ClassID)),
			zap.Int32("widget_id", int32(record.WidgetID)),
			zap.Int32("channel_id", int32(channelID)),
			zap.Int64("global_id", int64(globalID)),
			zap.Error(err))
		return 0, err
	}

	e.tree.Insert(record.WidgetID, w, channelID)
	if e.metrics != nil {
		e.metrics.WidgetsCreated.Inc()
		e.metrics.WidgetsLive.Set(float64(e.tree.Len()))
	}
	e.log.Debug("widget materialized",
		zap.Int32("widget_id", int32(record.WidgetID)),
		zap.Int32("class_id", int32(record.ClassID)),
		zap.Int32("channel_id", int32(channelID)))
	return w.Channel(), nil
}

// ChannelClosed evicts the node for a widget whose channel closed. Eviction
// is unconditional and does not cascade; descendants' channels close
// independently, and stale child references in other nodes are left in
// place.
func (e *Engine) ChannelClosed(widgetID types.WidgetID) {
	e.tree.Remove(widgetID)
	if e.metrics != nil {
		e.metrics.WidgetsRemoved.Inc()
		e.metrics.WidgetsLive.Set(float64(e.tree.Len()))
	}
	e.log.Debug("widget evicted", zap.Int32("widget_id", int32(widgetID)))
}
