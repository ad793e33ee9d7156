package dom

import "fmt"

// EventType 标识事件类型。
type EventType uint8

const (
	// EventClick 是主激活（点击）事件。
	EventClick EventType = iota + 1
)

// EventPhase 表示事件当前所处的传播阶段。
type EventPhase uint8

const (
	PhaseTarget EventPhase = iota
	PhaseBubble
)

// Event 在目标节点触发后沿父链冒泡。
type Event struct {
	Type          EventType
	Target        *Node
	CurrentTarget *Node
	Phase         EventPhase
	stopped       bool
}

// StopPropagation 阻止事件继续冒泡。
func (e *Event) StopPropagation() { e.stopped = true }

// IsPropagationStopped 判断是否已停止冒泡。
func (e *Event) IsPropagationStopped() bool { return e.stopped }

// Handler 是事件回调。
type Handler func(*Event)

// On 在节点上注册事件回调；节点被 Remove 后回调随之注销。
func (n *Node) On(t EventType, h Handler) *Node {
	if h == nil || n.removed {
		return n
	}
	if n.handlers == nil {
		n.handlers = map[EventType][]Handler{}
	}
	n.handlers[t] = append(n.handlers[t], h)
	return n
}

// HasHandler 判断节点是否注册了 t 类型的回调。
func (n *Node) HasHandler(t EventType) bool { return len(n.handlers[t]) > 0 }

// Dispatch 从 target 开始依次调用回调并向上冒泡，返回是否有回调被执行。
func (d *Document) Dispatch(target *Node, t EventType) (bool, error) {
	if err := d.checkAttached(target); err != nil {
		return false, err
	}
	ev := &Event{Type: t, Target: target, Phase: PhaseTarget}
	handled := false
	for cur := target; cur != nil; cur = cur.parent {
		ev.CurrentTarget = cur
		if cur != target {
			ev.Phase = PhaseBubble
		}
		for _, h := range cur.handlers[t] {
			h(ev)
			handled = true
		}
		if ev.stopped {
			break
		}
	}
	return handled, nil
}

// Click 模拟点击 id 对应节点；若该节点是按钮组，则点击其中第一个带回调的子节点。
func (d *Document) Click(id string) error {
	n := d.FindByID(id)
	if n == nil {
		return fmt.Errorf("%w: #%s", ErrNotFound, id)
	}
	target := n
	found := false
	n.Walk(func(c *Node) bool {
		if found {
			return false
		}
		if c.HasHandler(EventClick) {
			target, found = c, true
			return false
		}
		return true
	})
	_, err := d.Dispatch(target, EventClick)
	return err
}
