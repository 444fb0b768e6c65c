package contentcache_test

import (
	"fmt"

	"github.com/jaredsinclair/contentcache"
)

func Example() {
	cache, err := contentcache.New[[]byte]("/tmp/contentcache-example",
		contentcache.NewHTTPFetcher(nil),
		contentcache.BytesCodec{},
		contentcache.WithByteLimit[[]byte](50<<20),
	)
	if err != nil {
		fmt.Println(err)
		return
	}
	defer cache.Close()

	// Pre-populate known content; later fetches for this key hit memory
	// synchronously.
	key := cache.EntryKey("https://example.com/logo", contentcache.Original[[]byte]())
	cache.Seed(key, []byte("logo bytes"))

	receipt := cache.Fetch("https://example.com/logo", contentcache.Original[[]byte](),
		func(data []byte, ok bool) {
			fmt.Println(ok, string(data))
		})
	fmt.Println(receipt.Mode == contentcache.ModeSync)
	// Output:
	// true logo bytes
	// true
}
