// Package main exercises the synchronization core end to end against the
// stub API: comments, replies, cascade delete, likes, and follow
// propagation across two simulated surfaces.
package main

import (
	"context"
	"log"
	"time"

	"skillsync/api"
	"skillsync/cache"
	"skillsync/config"
	"skillsync/engagement"
	"skillsync/events"
	"skillsync/follow"
	"skillsync/session"
	"skillsync/stubserver"
)

func main() {
	cfg := config.LoadConfig()
	ctx := context.Background()

	// Local API to talk to.
	srv := stubserver.New(cfg.JWTSecret)
	users, items, err := srv.Seed(2)
	if err != nil {
		log.Fatalf("Seed failed: %v", err)
	}
	go func() {
		if err := srv.Listen(cfg.StubPort); err != nil {
			log.Fatalf("Stub server stopped: %v", err)
		}
	}()
	time.Sleep(200 * time.Millisecond)

	u1, u2 := users[0], users[1]
	item := items[0]

	// Core wiring: cache, bus, session, client, stores.
	fc := cache.NewFollowCache(cache.Connect(cfg.RedisURL))
	bus := events.NewBus()
	sess := session.New(fc, bus)
	client := api.NewHTTPClient("http://localhost:"+cfg.StubPort+"/api", cfg.HTTPTimeout, sess.Token)
	store := engagement.NewStore(client, bus, sess.CurrentUserID)
	followSvc := follow.NewService(client, fc, bus, sess.CurrentUserID)

	// Two independent surfaces watching the bus.
	bus.SubscribeEngagement(func(ev events.EngagementChanged) {
		log.Printf("[feed]    item %s now likes=%d comments=%d", ev.ItemID, ev.LikeCount, ev.CommentCount)
	})
	bus.SubscribeFollow(func(ev events.FollowStatusChanged) {
		log.Printf("[sidebar] %s -> %s (%s)", ev.ActorID, ev.SubjectID, ev.Action)
	})

	signIn := func(userID string) {
		token, err := srv.TokenFor(userID)
		if err != nil {
			log.Fatalf("Token issue failed: %v", err)
		}
		if err := sess.SignIn(token); err != nil {
			log.Fatalf("Sign in failed: %v", err)
		}
	}

	// U1 comments on their own update.
	signIn(u1.ID)
	store.Hydrate(item)
	commentID, err := store.AddComment(ctx, item.ID, "nice!")
	if err != nil {
		log.Fatalf("AddComment failed: %v", err)
	}

	// U2 replies.
	signIn(u2.ID)
	if _, err := store.AddReply(ctx, item.ID, commentID, "thanks!"); err != nil {
		log.Fatalf("AddReply failed: %v", err)
	}
	if err := store.ToggleLike(ctx, item.ID); err != nil {
		log.Fatalf("ToggleLike failed: %v", err)
	}

	// U2 follows U1, then checks state without another network call.
	if err := followSvc.Follow(ctx, u1.ID); err != nil {
		log.Fatalf("Follow failed: %v", err)
	}
	if following, known := followSvc.GetFollowState(ctx, u1.ID); known {
		log.Printf("cached follow state for %s: %v", u1.ID, following)
	}
	if following, err := followSvc.Reconcile(ctx, u1.ID); err == nil {
		log.Printf("reconciled follow state for %s: %v", u1.ID, following)
	}

	// U1 deletes the comment; the reply goes with it.
	signIn(u1.ID)
	if err := store.DeleteComment(ctx, item.ID, commentID); err != nil {
		log.Fatalf("DeleteComment failed: %v", err)
	}

	if likes, comments, ok := store.Stats(item.ID); ok {
		log.Printf("final state: likes=%d comments=%d", likes, comments)
	}

	if err := sess.Logout(ctx); err != nil {
		log.Printf("Logout cleanup warning: %v", err)
	}
}
