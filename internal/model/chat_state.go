package model

// ChatState 只追加的消息日志。零值可用。
//
// Append 返回新状态，原状态不变；两个状态之间不共享可写的底层数组。
type ChatState struct {
	messages []Message
}

// NewChatState 以初始消息创建状态
func NewChatState(initial ...Message) ChatState {
	var s ChatState
	for _, m := range initial {
		s = s.Append(m)
	}
	return s
}

// Append 追加消息并返回新状态
func (s ChatState) Append(m Message) ChatState {
	next := make([]Message, len(s.messages), len(s.messages)+1)
	copy(next, s.messages)
	return ChatState{messages: append(next, m)}
}

// Messages 返回消息副本（按插入顺序）
func (s ChatState) Messages() []Message {
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Len 消息数量
func (s ChatState) Len() int {
	return len(s.messages)
}

// Last 最后一条消息
func (s ChatState) Last() (Message, bool) {
	if len(s.messages) == 0 {
		return Message{}, false
	}
	return s.messages[len(s.messages)-1], true
}
