package domain

// Thread is a forum discussion. Replies are embedded in the thread record.
type Thread struct {
	ThreadID  string  `json:"threadId"`
	Title     *string `json:"title"`
	Content   *string `json:"content"`
	Author    string  `json:"author"`
	Timestamp int64   `json:"timestamp"`
	Replies   []Reply `json:"replies"`
}

// Reply is an immutable answer appended to a thread.
type Reply struct {
	ReplyID   string  `json:"replyId"`
	Content   *string `json:"content"`
	Author    string  `json:"author"`
	Timestamp int64   `json:"timestamp"`
}

// ThreadInput carries the permitted fields of a new thread.
type ThreadInput struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
	Author  *string `json:"author"`
}

// ReplyInput carries the permitted fields of a new reply.
type ReplyInput struct {
	Content *string `json:"content"`
	Author  *string `json:"author"`
}

// NewThread builds an empty thread authored by the body author, the caller or "Anonymous".
func NewThread(in ThreadInput, caller string, ts int64) *Thread {
	return &Thread{
		ThreadID:  NewID(),
		Title:     in.Title,
		Content:   in.Content,
		Author:    Attribution(in.Author, caller, DefaultAnonymousAuthor),
		Timestamp: ts,
		Replies:   []Reply{},
	}
}

// NewReply builds a reply with a generated id.
func NewReply(in ReplyInput, caller string, ts int64) Reply {
	return Reply{
		ReplyID:   NewID(),
		Content:   in.Content,
		Author:    Attribution(in.Author, caller, DefaultAnonymousAuthor),
		Timestamp: ts,
	}
}

// AppendReply adds r after the existing replies.
func (t *Thread) AppendReply(r Reply) {
	t.Replies = append(t.Replies, r)
}
