package hub

import "context"

// Dataset addresses one config and split of a hub dataset
type Dataset struct {
	Client  *Client
	Fetcher ShardFetcher
	ID      string
	Config  string
	Split   string
	Opts    []StreamOption
}

// Open lists the shards and returns a lazy stream over them
func (d Dataset) Open(ctx context.Context) (*Stream, error) {
	urls, err := d.Client.ListShards(ctx, d.ID, d.Config, d.Split)
	if err != nil {
		return nil, err
	}
	return NewStream(ctx, d.Fetcher, urls, d.Opts...), nil
}
