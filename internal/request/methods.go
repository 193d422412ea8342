package request

import (
	"context"
	"encoding/json"
	"net/http"
)

// Get issues a GET and decodes the envelope data into T.
func Get[T any](ctx context.Context, c *Client, path string, opts ...Option) (*Response[T], error) {
	reply, err := c.Do(ctx, http.MethodGet, path, nil, opts...)
	return decodeReply[T](c, path, reply, err)
}

// Post issues a POST with a JSON body.
func Post[T, D any](ctx context.Context, c *Client, path string, body D, opts ...Option) (*Response[T], error) {
	reply, err := c.Do(ctx, http.MethodPost, path, body, opts...)
	return decodeReply[T](c, path, reply, err)
}

// Put issues a PUT with a JSON body.
func Put[T, D any](ctx context.Context, c *Client, path string, body D, opts ...Option) (*Response[T], error) {
	reply, err := c.Do(ctx, http.MethodPut, path, body, opts...)
	return decodeReply[T](c, path, reply, err)
}

// Patch issues a PATCH with a JSON body.
func Patch[T, D any](ctx context.Context, c *Client, path string, body D, opts ...Option) (*Response[T], error) {
	reply, err := c.Do(ctx, http.MethodPatch, path, body, opts...)
	return decodeReply[T](c, path, reply, err)
}

// Delete issues a DELETE.
func Delete[T any](ctx context.Context, c *Client, path string, opts ...Option) (*Response[T], error) {
	reply, err := c.Do(ctx, http.MethodDelete, path, nil, opts...)
	return decodeReply[T](c, path, reply, err)
}

// Upload POSTs form as multipart/form-data. Headers passed through opts are
// applied after the multipart content type, so a Content-Type option replaces
// it; keeping the boundary intact is the caller's job.
func Upload[T any](ctx context.Context, c *Client, path string, form *Form, opts ...Option) (*Response[T], error) {
	if form == nil {
		form = NewForm()
	}
	reply, err := c.Do(ctx, http.MethodPost, path, form, opts...)
	return decodeReply[T](c, path, reply, err)
}

func decodeReply[T any](c *Client, path string, reply *Reply, err error) (*Response[T], error) {
	if err != nil {
		return nil, err
	}
	out := &Response[T]{
		Code:    reply.Body.Code,
		Message: reply.Body.Message,
		Extra:   reply.Body.Extra,
	}
	if len(reply.Body.Data) > 0 {
		if err := json.Unmarshal(reply.Body.Data, &out.Data); err != nil {
			derr := &DecodeError{Path: path, Err: err}
			c.log.Error().Err(derr).Str("path", path).Msg("decode data")
			c.notify(NoticeRequestFailed)
			return nil, derr
		}
	}
	return out, nil
}
