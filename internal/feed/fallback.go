package feed

import "blog_feed/internal/domain"

var fallbackPosts = [...]domain.Post{
	{
		Title:       "Building Scalable Backend Systems with Django and FastAPI: A Comprehensive Guide",
		Link:        "https://medium.com/@ankitpoudel_/building-scalable-backend-systems",
		PubDate:     "Mon, 15 Jan 2024 10:00:00 GMT",
		Description: "In today's fast-paced digital landscape, building scalable backend systems is crucial for any successful web application. This comprehensive guide explores the best practices for creating robust, maintainable, and high-performance backend systems using two of Python's most powerful frameworks: Django and FastAPI. We'll dive deep into architectural patterns, performance optimization techniques, database design strategies, and deployment considerations that will help you build systems that can handle millions of users while maintaining code quality and developer productivity.",
		Categories:  []string{"Backend", "Django", "FastAPI"},
	},
	{
		Title:       "Implementing Real-time Features with WebSockets: From Theory to Production",
		Link:        "https://medium.com/@ankitpoudel_/websockets-realtime-features",
		PubDate:     "Mon, 08 Jan 2024 10:00:00 GMT",
		Description: "Real-time communication has become an essential feature in modern web applications, from chat systems to live notifications and collaborative editing. This detailed tutorial walks you through implementing real-time features using WebSockets, Redis, and Django Channels. You'll learn how to set up bidirectional communication, handle connection management, implement message broadcasting, and scale your real-time features for production environments. We'll also cover common pitfalls and best practices for maintaining stable WebSocket connections.",
		Categories:  []string{"WebSockets", "Real-time", "Django"},
	},
	{
		Title:       "Database Optimization Techniques for Large-Scale Applications: A Deep Dive",
		Link:        "https://medium.com/@ankitpoudel_/database-optimization",
		PubDate:     "Mon, 01 Jan 2024 10:00:00 GMT",
		Description: "As your application grows, database performance becomes increasingly critical. This comprehensive guide covers advanced database optimization techniques that can dramatically improve your application's performance. Learn about indexing strategies, query optimization, connection pooling, caching mechanisms, and database sharding. We'll explore real-world examples using PostgreSQL and discuss how to identify bottlenecks, monitor performance metrics, and implement solutions that scale with your user base.",
		Categories:  []string{"Database", "PostgreSQL", "Optimization"},
	},
}

// FallbackPosts returns a fresh copy of the static posts served when the
// feed cannot be read.
func FallbackPosts() []domain.Post {
	posts := make([]domain.Post, len(fallbackPosts))
	for i, p := range fallbackPosts {
		posts[i] = p.Clone()
	}
	return posts
}
