// Package cache provides a bounded least-recently-used map.
//
//	c := cache.NewLRU[tileKey, *image.RGBA](256)
//	c.Put(k, img)
//	img, ok := c.Get(k)
//
// LRU is not safe for concurrent use; owners guard it with their own lock.
package cache
