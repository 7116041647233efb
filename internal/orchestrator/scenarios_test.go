// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quill Contributors

package orchestrator_test

import (
	"context"
	"sync"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention
	"github.com/samber/oops"
	"github.com/stretchr/testify/mock"

	"github.com/quillpress/quill/internal/auth"
	"github.com/quillpress/quill/internal/form"
	"github.com/quillpress/quill/internal/orchestrator"
	"github.com/quillpress/quill/internal/router"
	"github.com/quillpress/quill/internal/session"
	"github.com/quillpress/quill/internal/validation"
)

var _ = Describe("Session orchestration", func() {
	var (
		ctx   context.Context
		gw    *mockGateway
		store *session.Store
		rec   *recorder
		orch  *orchestrator.Orchestrator
	)

	BeforeEach(func() {
		ctx = context.Background()
		gw = &mockGateway{}
		rec = &recorder{}

		var err error
		store, err = session.Open(ctx, session.NewMemoryKV())
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(store.Close)

		orch, err = orchestrator.New(gw, store, rec, rec)
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("logging in", func() {
		creds := auth.Credentials{Login: "hitesh5678", Password: "correct horse"}

		It("stores the session and navigates home", func() {
			gw.On("Login", mock.Anything, creds).Return(auth.SessionToken("tok-1"), nil).Once()
			gw.On("Authenticate", mock.Anything, auth.SessionToken("tok-1")).Return(hitesh, nil).Once()

			f, err := form.NewLoginForm(orch)
			Expect(err).NotTo(HaveOccurred())
			Expect(f.Submit(ctx, creds)).To(Succeed())

			sess := store.Get()
			Expect(sess.Present()).To(BeTrue())
			Expect(sess.Token()).To(Equal(auth.SessionToken("tok-1")))
			Expect(sess.Profile()).To(Equal(hitesh))
			Expect(rec.Routes()).To(Equal([]string{router.RouteHome}))
			Expect(orch.State()).To(Equal(orchestrator.StateAuthenticated))
		})

		It("issues exactly one Login for rapid repeated submits", func() {
			gw.On("Login", mock.Anything, creds).Return(auth.SessionToken("tok-1"), nil).Once()
			gw.On("Authenticate", mock.Anything, auth.SessionToken("tok-1")).Return(hitesh, nil).Once()

			f, err := form.NewLoginForm(orch)
			Expect(err).NotTo(HaveOccurred())

			var wg sync.WaitGroup
			for range 5 {
				wg.Add(1)
				go func() {
					defer wg.Done()
					defer GinkgoRecover()
					_ = f.Submit(ctx, creds)
				}()
			}
			wg.Wait()

			gw.AssertNumberOfCalls(GinkgoT(), "Login", 1)
			gw.AssertNumberOfCalls(GinkgoT(), "Authenticate", 1)
		})

		It("leaves the store untouched when hydration fails", func() {
			gw.On("Login", mock.Anything, creds).Return(auth.SessionToken("tok-1"), nil).Once()
			gw.On("Authenticate", mock.Anything, auth.SessionToken("tok-1")).Return(auth.UserProfile{},
				oops.Code(auth.CodeInvalidToken).Errorf("Invalid token")).Once()

			Expect(orch.SubmitLogin(ctx, creds)).NotTo(Succeed())
			Expect(store.Get().Present()).To(BeFalse())
			Expect(orch.State()).To(Equal(orchestrator.StateAnonymous))
			Expect(rec.Notices()).To(Equal([]string{"Invalid token"}))
		})

		It("shows the service message and keeps the guard fired on bad credentials", func() {
			gw.On("Login", mock.Anything, creds).Return(auth.SessionToken(""),
				oops.Code(auth.CodeInvalidCredentials).Errorf("Invalid login credentials provided")).Once()

			f, err := form.NewLoginForm(orch)
			Expect(err).NotTo(HaveOccurred())

			err = f.Submit(ctx, creds)
			Expect(auth.Kind(err)).To(Equal(auth.CodeInvalidCredentials))
			Expect(orch.State()).To(Equal(orchestrator.StateAnonymous))
			Expect(store.Get().Present()).To(BeFalse())
			Expect(rec.Notices()).To(Equal([]string{"Invalid login credentials provided"}))
			Expect(f.Submitted()).To(BeTrue())

			Expect(f.Submit(ctx, creds)).To(MatchError(form.ErrAlreadySubmitted))
			gw.AssertNumberOfCalls(GinkgoT(), "Login", 1)
		})
	})

	Describe("signing up", func() {
		It("blocks a short username without any remote call", func() {
			gw.On("EmailAvailable", mock.Anything, "hitesh@example.com").Return(true, nil).Once()

			engine, err := validation.NewEngine(gw)
			Expect(err).NotTo(HaveOccurred())
			f, err := form.NewSignupForm(engine, orch)
			Expect(err).NotTo(HaveOccurred())

			Expect(f.Edit(ctx, validation.FieldUsername, "abc")).To(Succeed())
			Expect(f.Edit(ctx, validation.FieldEmail, "hitesh@example.com")).To(Succeed())
			Expect(f.Edit(ctx, validation.FieldPassword, "correct horse")).To(Succeed())

			Expect(engine.State(validation.FieldUsername).Message).To(Equal(validation.MsgUsernameBounds))
			Expect(f.Submit(ctx)).To(MatchError(form.ErrSubmitBlocked))

			gw.AssertNotCalled(GinkgoT(), "UsernameAvailable", mock.Anything, mock.Anything)
			gw.AssertNotCalled(GinkgoT(), "Signup", mock.Anything, mock.Anything)
			Expect(store.Get().Present()).To(BeFalse())
		})

		It("creates the account once and hydrates the session", func() {
			input := auth.SignupInput{Username: "hitesh5678", Email: "hitesh@example.com", Password: "correct horse"}
			gw.On("UsernameAvailable", mock.Anything, input.Username).Return(true, nil).Once()
			gw.On("EmailAvailable", mock.Anything, input.Email).Return(true, nil).Once()
			gw.On("Signup", mock.Anything, input).Return(auth.SessionToken("tok-1"), nil).Once()
			gw.On("Authenticate", mock.Anything, auth.SessionToken("tok-1")).Return(hitesh, nil).Once()

			engine, err := validation.NewEngine(gw)
			Expect(err).NotTo(HaveOccurred())
			f, err := form.NewSignupForm(engine, orch)
			Expect(err).NotTo(HaveOccurred())

			Expect(f.Edit(ctx, validation.FieldUsername, input.Username)).To(Succeed())
			Expect(f.Edit(ctx, validation.FieldEmail, input.Email)).To(Succeed())
			Expect(f.Edit(ctx, validation.FieldPassword, input.Password)).To(Succeed())

			Expect(f.Submit(ctx)).To(Succeed())
			Expect(f.Submit(ctx)).To(MatchError(form.ErrAlreadySubmitted))

			Expect(store.Get().Profile()).To(Equal(hitesh))
			Expect(rec.Routes()).To(Equal([]string{router.RouteHome}))
			gw.AssertExpectations(GinkgoT())
		})
	})

	Describe("logging out", func() {
		It("clears the session and returns to the login view", func() {
			Expect(store.Set(ctx, "tok-1", hitesh)).To(Succeed())
			o, err := orchestrator.New(gw, store, rec, rec)
			Expect(err).NotTo(HaveOccurred())

			Expect(o.Logout(ctx)).To(Succeed())
			Expect(store.Get().Present()).To(BeFalse())
			Expect(rec.Routes()).To(Equal([]string{router.RouteLogin}))
		})
	})
})
